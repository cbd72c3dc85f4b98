package copier

// Progress is one progress report of a copy batch. Current counts the files
// copied so far, from 1 to at most Total.
type Progress struct {
	Current int
	Total   int
	Message string
}

// ProgressFunc receives progress reports synchronously from the copy loop,
// once per copied file. A slow ProgressFunc stalls the batch.
type ProgressFunc func(current, total int, message string)

// ChannelSink returns a ProgressFunc that sends each report on ch. Sends
// block, so reports arrive in order and none are dropped; give ch enough
// buffer or a reader that keeps up.
func ChannelSink(ch chan<- Progress) ProgressFunc {
	return func(current, total int, message string) {
		ch <- Progress{Current: current, Total: total, Message: message}
	}
}
