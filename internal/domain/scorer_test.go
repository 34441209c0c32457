package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScore_ModernTLDBeatsLegacy(t *testing.T) {
	// Same name, different TLD: the modern registry should rank higher.
	assert.Greater(t, Score("foo.ai"), Score("foo.com"))
	assert.Greater(t, Score("foo.io"), Score("foo.com"))
	assert.Greater(t, Score("foo.ai"), Score("foo.io"))
}

func TestScore_YearBonus(t *testing.T) {
	year := time.Now().Year()
	// Same length, same keywords; only the year digits differ.
	withYear := fmt.Sprintf("launch%d.com", year)
	without := "launchabcd.com"

	assert.Greater(t, Score(withYear), Score(without))
}

func TestScore_NeverNegative(t *testing.T) {
	tests := []string{
		"www.blog.shop.somethingverylongandestablished.com",
		"a.co",
		"www.x.org",
		"blog.example-long-established-site-name.com",
	}

	for _, d := range tests {
		t.Run(d, func(t *testing.T) {
			assert.GreaterOrEqual(t, Score(d), 0)
		})
	}
}

func TestScore_Deterministic(t *testing.T) {
	d := "mynewapp.ai"
	first := Score(d)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Score(d))
	}
}

func TestScore_LengthSweetSpot(t *testing.T) {
	// 7-15 chars total gets the length bonus; very short or very long
	// names are penalized.
	assert.Greater(t, Score("neat.io"), Score("ne.io"))
}

func TestScore_EstablishedMarkersPenalized(t *testing.T) {
	assert.Less(t, Score("blog.foopages.com"), Score("foopages.com"))
	assert.Less(t, Score("shop.foopages.com"), Score("foopages.com"))
}
