// Package audio renders QSO playback text as Morse code audio. The
// player produces PCM16 samples into a sink writer; the sink (a sound
// device or file) paces actual output.
package audio

import "strings"

var morseTable = map[rune]string{
	'A': ".-", 'B': "-...", 'C': "-.-.", 'D': "-..", 'E': ".", 'F': "..-.",
	'G': "--.", 'H': "....", 'I': "..", 'J': ".---", 'K': "-.-", 'L': ".-..",
	'M': "--", 'N': "-.", 'O': "---", 'P': ".--.", 'Q': "--.-", 'R': ".-.",
	'S': "...", 'T': "-", 'U': "..-", 'V': "...-", 'W': ".--", 'X': "-..-",
	'Y': "-.--", 'Z': "--..",
	'0': "-----", '1': ".----", '2': "..---", '3': "...--", '4': "....-",
	'5': ".....", '6': "-....", '7': "--...", '8': "---..", '9': "----.",
	'.': ".-.-.-", ',': "--..--", ':': "---...", '=': "-...-", '?': "..--..",
	'/': "-..-.",
}

var inverseMorseTable = func() map[string]rune {
	inv := make(map[string]rune, len(morseTable))
	for r, code := range morseTable {
		inv[code] = r
	}
	return inv
}()

// ToMorse converts text to dot-dash notation, characters separated by
// single spaces. Characters without a Morse encoding are dropped.
func ToMorse(text string) string {
	var codes []string
	for _, r := range strings.ToUpper(text) {
		if code, ok := morseTable[r]; ok {
			codes = append(codes, code)
		}
	}
	return strings.Join(codes, " ")
}

// FromMorse converts space-separated dot-dash notation back to text.
// Unknown codes are dropped.
func FromMorse(code string) string {
	var b strings.Builder
	for _, c := range strings.Split(code, " ") {
		if r, ok := inverseMorseTable[c]; ok {
			b.WriteRune(r)
		}
	}
	return b.String()
}
