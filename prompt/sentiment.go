package prompt

import "strings"

// polarityLexicon maps word stems to AFINN-style polarity scores in [-5, 5].
// The table covers the vocabulary that actually shows up in image prompts;
// words outside the lexicon score zero.
var polarityLexicon = map[string]float64{
	// positive
	"amaz":      4,
	"ador":      3,
	"awesom":    4,
	"beauti":    3,
	"bright":    1,
	"bliss":     3,
	"celebr":    3,
	"charm":     3,
	"cheer":     2,
	"delight":   3,
	"dream":     1,
	"elegant":   2,
	"enchant":   2,
	"excit":     3,
	"fantast":   4,
	"friend":    1,
	"fun":       4,
	"gentle":    3,
	"glad":      3,
	"glori":     2,
	"gorgeous":  3,
	"grace":     1,
	"grand":     3,
	"great":     3,
	"happi":     3,
	"happy":     3,
	"heaven":    2,
	"hope":      2,
	"joy":       3,
	"kind":      2,
	"laugh":     1,
	"love":      3,
	"loveli":    3,
	"lovely":    3,
	"luck":      3,
	"magnific":  3,
	"marvel":    3,
	"merri":     3,
	"nice":      3,
	"paradis":   3,
	"peace":     2,
	"perfect":   3,
	"play":      1,
	"pleasant":  3,
	"pretti":    1,
	"pretty":    1,
	"radiant":   2,
	"serene":    2,
	"smile":     2,
	"splendid":  3,
	"stunning":  4,
	"sunni":     2,
	"sunny":     2,
	"super":     3,
	"sweet":     2,
	"triumph":   4,
	"vibrant":   3,
	"victori":   3,
	"warm":      1,
	"wonder":    4,
	"wonderful": 4,

	// negative
	"abandon":  -2,
	"afraid":   -2,
	"angri":    -3,
	"angry":    -3,
	"apocalyp": -2,
	"bad":      -3,
	"bleak":    -2,
	"broken":   -1,
	"burn":     -2,
	"chaos":    -2,
	"creepi":   -2,
	"creepy":   -2,
	"cruel":    -3,
	"cri":      -1,
	"dark":     -1,
	"dead":     -3,
	"death":    -2,
	"decay":    -2,
	"demon":    -2,
	"despair":  -3,
	"destroy":  -3,
	"devast":   -2,
	"dread":    -2,
	"dying":    -3,
	"eeri":     -2,
	"eerie":    -2,
	"evil":     -3,
	"fear":     -2,
	"fight":    -1,
	"ghost":    -1,
	"gloom":    -2,
	"gloomi":   -2,
	"grave":    -2,
	"grim":     -2,
	"hate":     -3,
	"haunt":    -2,
	"hell":     -4,
	"horribl":  -3,
	"horror":   -3,
	"hurt":     -2,
	"kill":     -3,
	"lonely":   -2,
	"loneli":   -2,
	"lost":     -3,
	"menac":    -2,
	"miser":    -3,
	"monster":  -1,
	"nightmar": -3,
	"pain":     -2,
	"rage":     -2,
	"ruin":     -2,
	"sad":      -2,
	"scare":    -2,
	"scari":    -2,
	"scary":    -2,
	"sinister": -2,
	"storm":    -1,
	"terribl":  -3,
	"terror":   -3,
	"threat":   -2,
	"tragedi":  -2,
	"tragic":   -2,
	"ugli":     -3,
	"ugly":     -3,
	"violent":  -3,
	"war":      -2,
	"wreck":    -2,
}

// stem reduces a token to the lexicon's stem form. This is a light
// Porter-style suffix stripper: enough to fold plural, participle and
// adjectival variants onto the stems used in the table above.
func stem(token string) string {
	t := token

	// -ies/-ied -> -i ("happiest" handled by -est below)
	switch {
	case strings.HasSuffix(t, "ies") && len(t) > 4:
		t = t[:len(t)-3] + "i"
	case strings.HasSuffix(t, "ied") && len(t) > 4:
		t = t[:len(t)-3] + "i"
	}

	for _, suffix := range []string{"fully", "ness", "ment", "ing", "est", "ful", "ous", "ed", "ly", "es", "s"} {
		if strings.HasSuffix(t, suffix) && len(t)-len(suffix) >= 3 {
			t = t[:len(t)-len(suffix)]
			break
		}
	}

	// final y -> i so "happy"/"happiness" meet at "happi"
	if strings.HasSuffix(t, "y") && len(t) > 3 {
		t = t[:len(t)-1] + "i"
	}

	return t
}

// SentimentScore computes the mean lexicon polarity over the token sequence:
// the sum of per-token scores divided by the token count. Tokens are looked
// up verbatim first, then by stem. Returns 0 for an empty sequence.
func SentimentScore(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}

	var sum float64
	for _, token := range tokens {
		if score, ok := polarityLexicon[token]; ok {
			sum += score
			continue
		}
		if score, ok := polarityLexicon[stem(token)]; ok {
			sum += score
		}
	}

	return sum / float64(len(tokens))
}
