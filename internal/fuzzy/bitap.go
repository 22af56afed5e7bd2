package fuzzy

import "math"

// maxBits is the widest pattern a single bitmask can hold.
const maxBits = 32

type chunk struct {
	runes    []rune
	alphabet map[rune]uint32
	start    int
}

type result struct {
	isMatch bool
	score   float64
	indices [][2]int
}

// pattern is a lowercased query split into chunks of at most maxBits runes.
type pattern struct {
	runes  []rune
	chunks []chunk
	opts   Options
}

func newPattern(query string, opts Options) *pattern {
	p := &pattern{runes: []rune(query), opts: opts}
	n := len(p.runes)

	if n <= maxBits {
		p.addChunk(p.runes, 0)
		return p
	}

	remainder := n % maxBits
	end := n - remainder
	for i := 0; i < end; i += maxBits {
		p.addChunk(p.runes[i:i+maxBits], i)
	}
	if remainder > 0 {
		start := n - maxBits
		p.addChunk(p.runes[start:], start)
	}

	return p
}

func (p *pattern) addChunk(runes []rune, start int) {
	p.chunks = append(p.chunks, chunk{
		runes:    runes,
		alphabet: patternAlphabet(runes),
		start:    start,
	})
}

// searchIn scores text against every chunk. The score is the mean over chunks.
func (p *pattern) searchIn(text []rune) result {
	if runesEqual(p.runes, text) {
		r := result{isMatch: true, score: 0}
		if p.opts.IncludeMatches {
			r.indices = [][2]int{{0, len(text) - 1}}
		}
		return r
	}

	var allIndices [][2]int
	totalScore := 0.0
	hasMatches := false

	for _, c := range p.chunks {
		r := bitapSearch(text, c.runes, c.alphabet, p.opts, p.opts.Location+c.start)
		if r.isMatch {
			hasMatches = true
			allIndices = append(allIndices, r.indices...)
		}
		totalScore += r.score
	}

	if !hasMatches {
		return result{isMatch: false, score: 1}
	}

	return result{
		isMatch: true,
		score:   totalScore / float64(len(p.chunks)),
		indices: allIndices,
	}
}

// bitapSearch finds the best approximate occurrence of pat in text near location.
func bitapSearch(text, pat []rune, alphabet map[rune]uint32, opts Options, location int) result {
	patternLen := len(pat)
	textLen := len(text)
	expectedLocation := max(0, min(location, textLen))
	currentThreshold := opts.Threshold
	bestLocation := expectedLocation

	computeMatches := opts.MinMatchCharLength > 1 || opts.IncludeMatches
	var matchMask []bool
	if computeMatches {
		matchMask = make([]bool, textLen+patternLen+1)
	}

	score := func(errors, currentLocation int) float64 {
		return computeScore(patternLen, errors, currentLocation, expectedLocation, opts.Distance, opts.IgnoreLocation)
	}

	// Exact occurrences tighten the threshold before the fuzzy pass.
	for {
		index := indexRunes(text, pat, bestLocation)
		if index < 0 {
			break
		}
		currentThreshold = math.Min(score(0, index), currentThreshold)
		bestLocation = index + patternLen
		if computeMatches {
			for i := 0; i < patternLen; i++ {
				matchMask[index+i] = true
			}
		}
	}

	bestLocation = -1
	var lastBitArr []uint32
	finalScore := 1.0
	binMax := patternLen + textLen
	mask := uint32(1) << (patternLen - 1)

	for i := 0; i < patternLen; i++ {
		// Widest window that can still score under the threshold with i errors.
		binMin := 0
		binMid := binMax
		for binMin < binMid {
			if score(i, expectedLocation+binMid) <= currentThreshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid

		start := max(1, expectedLocation-binMid+1)
		finish := textLen
		if !opts.FindAllMatches {
			finish = min(expectedLocation+binMid, textLen) + patternLen
		}

		bitArr := make([]uint32, finish+2)
		bitArr[finish+1] = (uint32(1) << i) - 1

		for j := finish; j >= start; j-- {
			currentLocation := j - 1

			var charMatch uint32
			if currentLocation < textLen {
				charMatch = alphabet[text[currentLocation]]
			}
			if computeMatches {
				matchMask[currentLocation] = charMatch != 0
			}

			bitArr[j] = ((bitArr[j+1] << 1) | 1) & charMatch
			if i > 0 {
				bitArr[j] |= ((at(lastBitArr, j+1) | at(lastBitArr, j)) << 1) | 1 | at(lastBitArr, j+1)
			}

			if bitArr[j]&mask != 0 {
				finalScore = score(i, currentLocation)
				if finalScore <= currentThreshold {
					currentThreshold = finalScore
					bestLocation = currentLocation
					if bestLocation <= expectedLocation {
						break
					}
					start = max(1, 2*expectedLocation-bestLocation)
				}
			}
		}

		// No hope for a better match with more errors.
		if score(i+1, expectedLocation) > currentThreshold {
			break
		}
		lastBitArr = bitArr
	}

	r := result{
		isMatch: bestLocation >= 0,
		score:   math.Max(0.001, finalScore),
	}

	if computeMatches {
		indices := maskToIndices(matchMask, opts.MinMatchCharLength)
		if len(indices) == 0 {
			r.isMatch = false
		} else if opts.IncludeMatches {
			r.indices = indices
		}
	}

	return r
}

// computeScore combines error ratio and distance from the expected location.
func computeScore(patternLen, errors, currentLocation, expectedLocation, distance int, ignoreLocation bool) float64 {
	accuracy := float64(errors) / float64(patternLen)
	if ignoreLocation {
		return accuracy
	}

	proximity := expectedLocation - currentLocation
	if proximity < 0 {
		proximity = -proximity
	}

	if distance == 0 {
		if proximity != 0 {
			return 1.0
		}
		return accuracy
	}

	return accuracy + float64(proximity)/float64(distance)
}

func patternAlphabet(pat []rune) map[rune]uint32 {
	alphabet := make(map[rune]uint32, len(pat))
	n := len(pat)
	for i, r := range pat {
		alphabet[r] |= uint32(1) << (n - i - 1)
	}
	return alphabet
}

// maskToIndices converts a match mask into inclusive [start, end] runs.
func maskToIndices(mask []bool, minLen int) [][2]int {
	var indices [][2]int
	start := -1

	for i, matched := range mask {
		if matched && start == -1 {
			start = i
		} else if !matched && start != -1 {
			if i-start >= minLen {
				indices = append(indices, [2]int{start, i - 1})
			}
			start = -1
		}
	}
	if start != -1 && len(mask)-start >= minLen {
		indices = append(indices, [2]int{start, len(mask) - 1})
	}

	return indices
}

func indexRunes(text, pat []rune, from int) int {
	if from < 0 {
		from = 0
	}
	for i := from; i+len(pat) <= len(text); i++ {
		if runesEqual(text[i:i+len(pat)], pat) {
			return i
		}
	}
	return -1
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func at(arr []uint32, i int) uint32 {
	if i < 0 || i >= len(arr) {
		return 0
	}
	return arr[i]
}
