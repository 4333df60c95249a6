package batch

// Partition splits files into n contiguous chunks whose lengths differ by
// at most one; the first len(files)%n chunks carry the extra file.
// Concatenating the chunks in order reproduces files exactly. n below 1 is
// treated as 1.
func Partition(files []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	chunks := make([][]string, n)
	q, r := len(files)/n, len(files)%n
	start := 0
	for i := range chunks {
		size := q
		if i < r {
			size++
		}
		chunks[i] = files[start : start+size]
		start += size
	}
	return chunks
}
