package normalizer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stemmers() []Stemmer {
	return []Stemmer{PorterStemmer{}, SnowballStemmer{}}
}

func TestNormalizeCaseAndPunctuation(t *testing.T) {
	for _, s := range stemmers() {
		n := New(s)
		t.Run(s.Name(), func(t *testing.T) {
			assert.Equal(t, n.Normalize("love"), n.Normalize("Love"))
			assert.Equal(t, n.Normalize("love"), n.Normalize("Love,"))
			assert.Equal(t, n.Normalize("love"), n.Normalize("LOVE."))
			assert.Equal(t, n.Normalize("thy"), n.Normalize("th'y"))
			assert.NotEqual(t, n.Normalize("love"), n.Normalize("Love!"))
			assert.NotEqual(t, n.Normalize("love"), n.Normalize("love;"))
		})
	}
}

func TestNormalizeStems(t *testing.T) {
	for _, s := range stemmers() {
		n := New(s)
		t.Run(s.Name(), func(t *testing.T) {
			assert.Equal(t, "love", n.Normalize("loving"))
			assert.Equal(t, "love", n.Normalize("Loves"))
			assert.Equal(t, "rose", n.Normalize("roses"))
			assert.Equal(t, "blind", n.Normalize("blind"))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := New(nil)
	for _, word := range []string{"loving", "Roses,", "blind", "is", "love"} {
		once := n.Normalize(word)
		assert.Equal(t, once, n.Normalize(once), word)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	n := New(nil)
	assert.Equal(t, "", n.Normalize(""))
	assert.Equal(t, "", n.Normalize("',."))
}

func TestNewStemmer(t *testing.T) {
	s, err := NewStemmer("")
	require.NoError(t, err)
	assert.Equal(t, StemmerPorter, s.Name())

	s, err = NewStemmer("Snowball")
	require.NoError(t, err)
	assert.Equal(t, StemmerSnowball, s.Name())

	_, err = NewStemmer("lancaster")
	assert.Error(t, err)
}

func TestNormalizeConcurrent(t *testing.T) {
	n := New(nil)
	want := n.Normalize("creatures")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.Equal(t, want, n.Normalize("Creatures,"))
			}
		}()
	}
	wg.Wait()
}
