package utils

// DefaultFeedbackKey is the seed every license encryption run starts from.
const DefaultFeedbackKey uint32 = 0x787

// feedbackMask is OR-ed into the key after every byte.
const feedbackMask uint32 = 0x482D

// FeedbackStep encrypts one byte under key and returns the key for the next
// byte, derived from the ciphertext byte just produced.
func FeedbackStep(key uint32, plain byte) (cipher byte, next uint32) {
	cipher = plain ^ byte((key>>8)&0xFF)
	return cipher, (uint32(cipher) & key) | feedbackMask
}

// FeedbackUnstep decrypts one byte under key. The next key comes from the
// ciphertext byte, which is the input here.
func FeedbackUnstep(key uint32, cipher byte) (plain byte, next uint32) {
	return cipher ^ byte((key>>8)&0xFF), (uint32(cipher) & key) | feedbackMask
}

// FeedbackXOR encrypts data with the key-feedback XOR stream starting at seed.
// The key evolves from each emitted byte, so the output depends on order.
func FeedbackXOR(seed uint32, data []byte) []byte {
	result := make([]byte, len(data))
	key := seed
	for i, b := range data {
		result[i], key = FeedbackStep(key, b)
	}
	return result
}

// FeedbackXORDecode reverses FeedbackXOR.
func FeedbackXORDecode(seed uint32, data []byte) []byte {
	result := make([]byte, len(data))
	key := seed
	for i, c := range data {
		result[i], key = FeedbackUnstep(key, c)
	}
	return result
}

// FeedbackXORDefault encrypts with DefaultFeedbackKey
func FeedbackXORDefault(data []byte) []byte {
	return FeedbackXOR(DefaultFeedbackKey, data)
}

// FeedbackXORDecodeDefault decrypts with DefaultFeedbackKey
func FeedbackXORDecodeDefault(data []byte) []byte {
	return FeedbackXORDecode(DefaultFeedbackKey, data)
}
