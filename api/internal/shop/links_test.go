package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCTALinks(t *testing.T) {
	l := NewLinker("petmoodai-20")

	links := l.CTALinks([]string{"Rope tug", "Puzzle feeder"}, "Salmon bites")
	assert.Equal(t, []Link{
		{Label: "Rope tug", URL: "https://www.amazon.com/s?k=Rope+tug&tag=petmoodai-20"},
		{Label: "Puzzle feeder", URL: "https://www.amazon.com/s?k=Puzzle+feeder&tag=petmoodai-20"},
		{Label: "Buy Salmon bites", URL: "https://www.amazon.com/s?k=Salmon+bites&tag=petmoodai-20"},
	}, links)
}

func TestCTALinks_TreatFallbackAndNoToys(t *testing.T) {
	links := NewLinker("").CTALinks(nil, "  ")
	assert.Equal(t, []Link{
		{Label: "Buy pet treats", URL: "https://www.amazon.com/s?k=pet+treats"},
	}, links)
}

func TestSearch_EscapesQuery(t *testing.T) {
	u := NewLinker("t-20").Search("Kong — why it fits & more")
	assert.Equal(t, "https://www.amazon.com/s?k=Kong+%E2%80%94+why+it+fits+%26+more&tag=t-20", u)
}
