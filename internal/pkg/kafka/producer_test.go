package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitBrokers(t *testing.T) {
	tests := []struct {
		name    string
		brokers string
		want    []string
	}{
		{name: "single", brokers: "localhost:9094", want: []string{"localhost:9094"}},
		{name: "list with spaces", brokers: "k1:9092, k2:9092 ,", want: []string{"k1:9092", "k2:9092"}},
		{name: "empty", brokers: " ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitBrokers(tt.brokers))
		})
	}
}

func TestDisabledProducerIsMock(t *testing.T) {
	p := NewProducer("localhost:9094", "digit-predictions", false)

	_, ok := p.(*mockProducer)
	assert.True(t, ok)
	assert.NoError(t, p.Publish("session", map[string]int{"digit": 3}))
	assert.NoError(t, p.Close())
}

func TestProducerWithoutBrokersIsMock(t *testing.T) {
	p := NewProducer("", "digit-predictions", true)

	_, ok := p.(*mockProducer)
	assert.True(t, ok)
}
