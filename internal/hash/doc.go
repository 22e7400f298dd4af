// Package hash provides the CRC32-Castagnoli checksums used for blocklet
// pages, footers and dictionary fingerprints.
//
//	checksum := hash.CRC32C(page)
//
// For data arriving in pieces use NewCRC32C and Sum32.
package hash
