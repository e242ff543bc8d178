// Package mmap maps record files read-only into memory.
//
// The local blob store hands the mapped bytes straight to the decoder, so a
// data file is never copied through a read buffer before parsing.
//
//	m, err := mmap.Open("countries.yml")
//	if err != nil { ... }
//	defer m.Close()
//	_ = m.Advise(mmap.AccessSequential)
//	data := m.Bytes()
//
// On platforms without mmap(2) the file is read into memory instead.
package mmap
