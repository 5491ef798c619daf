package pool

// Chunk is a contiguous index range [Start, End) of the live stars.
type Chunk struct {
	Start, End int
}

func (c Chunk) Len() int { return c.End - c.Start }

// Partition splits [0, total) into n contiguous chunks. Every chunk gets
// total/n indices; the remainder goes to the last one.
func Partition(total, n int) []Chunk {
	if n < 1 {
		n = 1
	}
	if total < 0 {
		total = 0
	}
	per := total / n
	chunks := make([]Chunk, n)
	start := 0
	for i := 0; i < n-1; i++ {
		chunks[i] = Chunk{start, start + per}
		start += per
	}
	chunks[n-1] = Chunk{start, total}
	return chunks
}
