// Package hash computes the CRC32-Castagnoli checksums used to detect
// changed source data between reloads.
//
//	sum := hash.CRC32C(raw)
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	sum = h.Sum32()
package hash
