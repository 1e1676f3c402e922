package pipeline

// Static scoring and categorization tables. Matching is
// case-insensitive and diacritic-folded (see foldText).

// contentKeywords maps headline keywords to base weights, grouped by
// theme. Repeat occurrences get diminishing returns in the scorer.
var contentKeywords = map[string]float64{
	// transfers
	"transfer": 8, "signs": 7, "signing": 7, "deal": 5, "contract": 5,
	"loan": 4, "bid": 5, "fee": 4,
	// breaking news
	"breaking": 10, "confirmed": 6, "official": 7, "exclusive": 6, "announces": 5,
	// injury
	"injury": 6, "injured": 5, "ruled out": 5, "fitness": 3, "surgery": 5, "sidelined": 4,
	// competition
	"final": 7, "semi-final": 6, "champions league": 8, "world cup": 9,
	"premier league": 6, "derby": 5, "playoff": 5, "qualifier": 4,
	// performance
	"hat-trick": 7, "record": 6, "century": 5, "milestone": 4, "debut": 4, "comeback": 5,
	// controversy
	"controversy": 6, "banned": 6, "scandal": 7, "investigation": 5, "red card": 4, "fined": 4,
	// score
	"win": 3, "victory": 4, "defeat": 3, "beat": 3, "draw": 2, "thrash": 5,
	// management
	"manager": 4, "coach": 3, "sacked": 7, "appointed": 5, "resigns": 6, "interim": 3,
}

// sourceAuthority scores well-known outlets. Lookup is substring
// based; partial matches are discounted in the scorer.
var sourceAuthority = map[string]float64{
	"bbc sport":          10,
	"sky sports":         9,
	"espn":               9,
	"reuters":            9,
	"the athletic":       9,
	"the guardian":       8,
	"espncricinfo":       8,
	"goal.com":           7,
	"eurosport":          7,
	"sports illustrated": 7,
	"motorsport.com":     7,
	"talksport":          6,
}

// sourceReliability feeds the dedup quality score. Unknown sources
// default to 3 in the deduplicator.
var sourceReliability = map[string]float64{
	"reuters":            10,
	"bbc sport":          9,
	"the athletic":       9,
	"sky sports":         8,
	"espn":               8,
	"the guardian":       8,
	"espncricinfo":       8,
	"eurosport":          7,
	"sports illustrated": 7,
	"motorsport.com":     7,
	"goal.com":           6,
	"talksport":          5,
}

// popularPlayers and popularTeams drive the engagement sub-score.
// Player matches are weighted x1.2, team matches x0.8.
var popularPlayers = map[string]float64{
	"messi": 10, "ronaldo": 10, "mbappe": 9, "haaland": 9,
	"bellingham": 8, "salah": 8, "kane": 7, "vinicius": 7,
	"kohli": 9, "rohit sharma": 7, "babar azam": 6, "stokes": 6,
	"djokovic": 9, "alcaraz": 8, "sinner": 7, "swiatek": 7,
	"verstappen": 9, "hamilton": 9, "norris": 7, "leclerc": 7,
	"lebron": 9, "curry": 8, "jokic": 7, "doncic": 7,
	"mcilroy": 7, "scheffler": 6,
}

var popularTeams = map[string]float64{
	"real madrid": 9, "barcelona": 9, "manchester united": 9,
	"manchester city": 8, "liverpool": 8, "arsenal": 8, "chelsea": 7,
	"bayern": 7, "juventus": 6, "psg": 7, "inter miami": 6,
	"india": 7, "australia": 6, "england": 7, "pakistan": 6,
	"ferrari": 8, "red bull": 7, "mclaren": 7, "mercedes": 7,
	"lakers": 7, "warriors": 7, "celtics": 6,
}

var emotionalKeywords = []string{
	"stunning", "shock", "shocking", "dramatic", "incredible",
	"furious", "sensational", "astonishing",
}

var superlatives = []string{
	"best", "worst", "greatest", "biggest", "fastest", "richest",
}

// feedTagMultipliers boost scores based on the raw categories a feed
// attached to the entry. The scorer takes the max over all tags.
var feedTagMultipliers = map[string]float64{
	"football":   1.2,
	"soccer":     1.2,
	"cricket":    1.15,
	"tennis":     1.1,
	"basketball": 1.1,
	"motorsport": 1.1,
	"formula 1":  1.1,
	"f1":         1.1,
	"golf":       1.05,
	"transfers":  1.1,
	"breaking":   1.15,
}

// CategoryUncategorized is assigned when no category scores high
// enough or the top two are too close to call.
const CategoryUncategorized = "uncategorized"

type categoryRule struct {
	sources  []string
	keywords []string
}

// categoryOrder fixes the iteration order so categorization is
// deterministic.
var categoryOrder = []string{
	"football", "cricket", "basketball", "tennis", "motorsport", "golf",
}

var categoryRules = map[string]categoryRule{
	"football": {
		sources: []string{"goal.com", "football", "soccer"},
		keywords: []string{
			"football", "soccer", "premier league", "champions league",
			"la liga", "serie a", "bundesliga", "goalkeeper", "midfielder",
			"striker", "defender", "penalty", "offside", "fifa", "uefa",
			"transfer window", "own goal", "relegation",
		},
	},
	"cricket": {
		sources: []string{"cricinfo", "cricbuzz", "wisden"},
		keywords: []string{
			"cricket", "wicket", "batsman", "batter", "bowler", "innings",
			"test match", "odi", "t20", "ipl", "stumps", "lbw",
			"all-rounder", "run chase", "powerplay", "duckworth-lewis",
		},
	},
	"basketball": {
		sources: []string{"nba", "hoopshype", "basketnews"},
		keywords: []string{
			"basketball", "nba", "three-pointer", "rebound", "slam dunk",
			"point guard", "triple-double", "euroleague", "free throw",
			"buzzer-beater", "backcourt",
		},
	},
	"tennis": {
		sources: []string{"atptour", "wta", "tennis365"},
		keywords: []string{
			"tennis", "grand slam", "wimbledon", "us open", "french open",
			"australian open", "tiebreak", "baseline", "atp", "wta",
			"straight sets", "match point",
		},
	},
	"motorsport": {
		sources: []string{"motorsport.com", "autosport", "formula1"},
		keywords: []string{
			"formula 1", "grand prix", "pole position", "pit stop",
			"qualifying", "motogp", "rally", "paddock", "safety car",
			"fastest lap", "constructors",
		},
	},
	"golf": {
		sources: []string{"golf digest", "pga tour", "golf channel"},
		keywords: []string{
			"golf", "pga", "masters", "birdie", "bogey", "fairway",
			"ryder cup", "leaderboard", "putt", "clubhouse", "tee time",
		},
	},
}
