package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	assert.Equal(t, "29,50", Number(29.5, 2))
	assert.Equal(t, "1.234,50", Number(1234.5, 2))
	assert.Equal(t, "0,00", Number(0, 2))
	assert.Equal(t, "-3,25", Number(-3.25, 2))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "R$ 30,00", Money(30, "BRL"))
	assert.Equal(t, "R$ 30,00", Money(30, "R$"))
	assert.Equal(t, "$ 231,55", Money(231.55, "USD"))
	assert.Equal(t, "EUR 10,00", Money(10, "EUR"))
}

func TestCompact(t *testing.T) {
	assert.Equal(t, Placeholder, Compact(0, ""))
	assert.Equal(t, "850,00", Compact(850, ""))
	assert.Equal(t, "2,50 mil", Compact(2500, ""))
	assert.Equal(t, "1,50 mi", Compact(1_500_000, ""))
	assert.Equal(t, "3,20 bi", Compact(3_200_000_000, ""))
	assert.Equal(t, "1,10 tri", Compact(1_100_000_000_000, ""))
	assert.Equal(t, "R$ 2,50 mil", Compact(2500, "BRL"))
	assert.Equal(t, "$ 1,50 mi", Compact(1_500_000, "USD"))
}
