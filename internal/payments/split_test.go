package payments

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		amount     int64
		rate       float64
		commission int64
		transfer   int64
	}{
		{"default rate on round amount", 1000, 2.5, 25, 975},
		{"rounds half up", 333, 2.5, 8, 325},
		{"exact half rounds up", 500, 2.5, 13, 487},
		{"zero rate", 1000, 0, 0, 1000},
		{"full rate", 1000, 100, 1000, 0},
		{"single unit", 1, 2.5, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			commission, transfer := Split(tt.amount, tt.rate)
			assert.Equal(t, tt.commission, commission)
			assert.Equal(t, tt.transfer, transfer)
			assert.Equal(t, tt.amount, commission+transfer, "split must conserve the total")
		})
	}
}

func TestSplitConservesTotal(t *testing.T) {
	for amount := int64(1); amount <= 10000; amount++ {
		commission, transfer := Split(amount, 2.5)
		if commission+transfer != amount {
			t.Fatalf("amount %d: commission %d + transfer %d != total", amount, commission, transfer)
		}
		if commission < 0 || transfer < 0 {
			t.Fatalf("amount %d: negative part", amount)
		}
	}
}

func TestIsAlreadyDone(t *testing.T) {
	assert.True(t, IsAlreadyDone(&Error{Code: "BAD_REQUEST_ERROR", Description: "Product already requested"}))
	assert.True(t, IsAlreadyDone(&Error{Code: "BAD_REQUEST_ERROR", Description: "Stakeholder Already exists"}))
	assert.False(t, IsAlreadyDone(&Error{Code: "BAD_REQUEST_ERROR", Description: "invalid account"}))
	assert.False(t, IsAlreadyDone(errors.New("already")))
	assert.False(t, IsAlreadyDone(nil))
}
