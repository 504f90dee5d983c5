package service

// SetCodeGenerator replaces the card code source
func (s *CardService) SetCodeGenerator(gen func() string) { s.newCode = gen }
