/*
NAME
  crc.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ts

// crcTable is the MPEG-2 section CRC32 table: polynomial 0x04C11DB7,
// MSB-first (not reflected), matching ISO/IEC 13818-1 Annex B.
var crcTable = makeCRCTable()

func makeCRCTable() [256]uint32 {
	const poly = uint32(0x04C11DB7)
	var table [256]uint32
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for bit := 0; bit < 8; bit++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
	return table
}

// CRC32 computes the MPEG-2 section CRC32 over b: initial value
// 0xFFFFFFFF, no final XOR, polynomial 0x04C11DB7, MSB-first.
func CRC32(b []byte) uint32 {
	crc := uint32(0xFFFFFFFF)
	for _, c := range b {
		crc = (crc << 8) ^ crcTable[byte(crc>>24)^c]
	}
	return crc
}

// AppendCRC32 appends the big-endian CRC32 of b to out.
func AppendCRC32(out, b []byte) []byte {
	crc := CRC32(b)
	return append(out, byte(crc>>24), byte(crc>>16), byte(crc>>8), byte(crc))
}
