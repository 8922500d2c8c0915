package turbosqueeze

// A Context holds the match index used by Encode. It is reusable across
// any number of blocks (the index is reset on every call) but not safe
// for concurrent use. Decoding needs no context.
type Context struct {
	level int
	index matcher
}

// NewContext returns a Context for the given compression level. Level 0
// keeps a single occurrence per indexed sequence; higher levels remember
// up to 2^level occurrences and pick the best. Levels outside [0,
// MaxLevel] are clamped.
func NewContext(level int) *Context {
	if level < 0 {
		level = 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	c := &Context{level: level}
	if level == 0 {
		c.index = newFastTable()
	} else {
		c.index = newMultiTable(level)
	}
	return c
}

// Level reports the compression level the context was created with.
func (c *Context) Level() int { return c.level }
