package calltree

import "strconv"

// FrameInfo identifies a call site. Line and Col are 1-based; zero means
// unknown.
type FrameInfo struct {
	// Key, when set, is used instead of the other fields to intern frames.
	Key  string
	Name string
	File string
	Line int
	Col  int
}

func (fi FrameInfo) key() string {
	if fi.Key != "" {
		return fi.Key
	}
	return fi.Name + "\x00" + fi.File + "\x00" + strconv.Itoa(fi.Line) + "\x00" + strconv.Itoa(fi.Col)
}

// Frame is a function identity unique within a profile. It may occur at
// many nodes of the call tree, and its weights aggregate over all of them.
type Frame struct {
	FrameInfo

	index       int32
	totalWeight float64
	selfWeight  float64
}

// Index is the position of the frame in Profile.Frames.
func (f *Frame) Index() int { return int(f.index) }

// TotalWeight is the weight of all samples the frame appears in. A sample
// is counted once even if the frame occurs several times in its stack.
func (f *Frame) TotalWeight() float64 { return f.totalWeight }

// SelfWeight is the weight of the samples the frame is the leaf of.
func (f *Frame) SelfWeight() float64 { return f.selfWeight }

func (f *Frame) String() string { return f.Name }
