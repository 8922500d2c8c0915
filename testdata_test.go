package turbosqueeze

import "math/rand"

// The placeholder-names paragraph used as the small test corpus.
const corpusText = `The names "John Doe" for males, "Jane Doe" or "Jane Roe" for females, or "Jonnie Doe" and "Janie Doe" for children, or just "Doe" non-gender-specifically are used as placeholder names for a party whose true identity is unknown or must be withheld in a legal action, case, or discussion. The names are also used to refer to a corpse or hospital patient whose identity is unknown. This practice is widely used in the United States and Canada, but is rarely used in other English-speaking countries including the United Kingdom itself, from where the use of "John Doe" in a legal context originates. The names Joe Bloggs or John Smith are used in the UK instead, as well as in Australia and New Zealand.`

// repeatedText returns n bytes of the corpus paragraph repeated.
func repeatedText(n int) []byte {
	b := make([]byte, 0, n+len(corpusText))
	for len(b) < n {
		b = append(b, corpusText...)
	}
	return b[:n]
}

// sawtooth returns n bytes of b[i] = i mod 256.
func sawtooth(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

// randomBytes returns n deterministically pseudo-random bytes.
func randomBytes(n int, seed int64) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(b)
	return b
}
