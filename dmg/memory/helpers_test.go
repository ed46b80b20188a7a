package memory

// bankedROM returns a ROM image where every byte holds its bank number,
// with a valid header for the given type and size codes.
func bankedROM(cartType, romCode, ramCode byte) []byte {
	banks, err := decodeROMBanks(romCode)
	if err != nil {
		panic(err)
	}
	rom := make([]byte, banks*romBankSize)
	for i := range rom {
		rom[i] = byte(i / romBankSize)
	}
	copy(rom[titleAddress:], "TESTROM")
	for i := titleAddress + len("TESTROM"); i <= titleEnd; i++ {
		rom[i] = 0
	}
	rom[cartridgeTypeAddress] = cartType
	rom[romSizeAddress] = romCode
	rom[ramSizeAddress] = ramCode
	rom[headerChecksumAddress] = computeHeaderChecksum(rom)
	return rom
}

func mustCartridge(data []byte) *Cartridge {
	cart, err := NewCartridgeWithData(data)
	if err != nil {
		panic(err)
	}
	return cart
}
