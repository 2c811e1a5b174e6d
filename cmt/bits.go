package cmt

// isPow2 reports whether size is a perfect power of 2.
func isPow2(size uint) bool {
	return size != 0 && size&(size-1) == 0
}
