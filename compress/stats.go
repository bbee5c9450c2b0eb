package compress

// Stats accumulates the byte totals of one codec's use. Counters only move
// on success.
type Stats struct {
	Compressions   uint64
	Decompressions uint64
	BytesIn        uint64
	BytesOut       uint64
}

// Ratio returns compressed over original size across all compressions, or 1
// before any bytes have been seen.
func (s Stats) Ratio() float64 {
	if s.BytesIn == 0 {
		return 1
	}
	return float64(s.BytesOut) / float64(s.BytesIn)
}

// Counting wraps a codec and tallies its activity. Like everything else at
// this layer it relies on the caller for mutual exclusion.
type Counting struct {
	inner Codec
	stats Stats
}

func NewCounting(inner Codec) *Counting {
	return &Counting{inner: inner}
}

func (c *Counting) Algorithm() Algorithm { return c.inner.Algorithm() }

func (c *Counting) Compress(data []byte) ([]byte, error) {
	out, err := c.inner.Compress(data)
	if err != nil {
		return nil, err
	}
	c.stats.Compressions++
	c.stats.BytesIn += uint64(len(data))
	c.stats.BytesOut += uint64(len(out))
	return out, nil
}

func (c *Counting) Decompress(data []byte, sizeHint int) ([]byte, error) {
	out, err := c.inner.Decompress(data, sizeHint)
	if err != nil {
		return nil, err
	}
	c.stats.Decompressions++
	return out, nil
}

// Stats returns a snapshot of the accumulated counters.
func (c *Counting) Stats() Stats { return c.stats }
