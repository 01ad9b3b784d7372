package usecase

import (
	"sort"
	"strings"

	"github.com/hairstory/backend/internal/catalog"
	"github.com/hairstory/backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// recommendationSignals are phrases that mark a product as actively endorsed.
// They only need a word boundary on the left, so "trying" and "used" count.
var recommendationSignals = []string{
	"i recommend", "i suggest", "adding", "also suggest", "also recommend",
	"suggest adding", "recommend adding", "try", "use", "start with",
}

// Extractor defaults
const (
	defaultRecommendationWindow = 200
	defaultComprehensiveWindow  = 300
	defaultMaxMentions          = 4
	defaultMinMentions          = 2
	defaultSectionMarker        = "what customers are saying"
)

// Tier names, in chain order
const (
	tierRecommendation = "recommendation"
	tierExactFallback  = "exact_fallback"
	tierComprehensive  = "comprehensive"
	tierAlias          = "alias"
	tierDirect         = "direct"
)

// MentionConfig holds configuration for the mention extractor
type MentionConfig struct {
	RecommendationWindow int // chars around a name searched for a signal phrase
	ComprehensiveWindow  int
	MaxMentions          int
	MinMentions          int // below this, the result is padded from the full pool
	SectionMarker        string
	Verbose              bool
}

// MentionExtractor finds the catalog products a generated text recommends
type MentionExtractor struct {
	products []domain.Product
	terms    [][]productTerm // per product: canonical name first, then aliases
	cfg      MentionConfig
	chain    []mentionMatcher
}

type productTerm struct {
	text  string
	alias bool
}

type span struct {
	start, end int
}

func (s span) length() int { return s.end - s.start }

// mentionDoc is one lower-cased text with its term and signal occurrences
type mentionDoc struct {
	text    string
	cutoff  int            // start of the trailing reviews section, or len(text)
	names   map[int][]span // product index -> canonical name occurrences
	aliases map[int][]span // product index -> alias occurrences
	signals []span
}

// mentionState accumulates accepted products across tiers
type mentionState struct {
	accepted []int
	seen     map[int]bool
	tierHits map[string]int
}

// mentionMatcher is one tier: a pure function of the document and what
// earlier tiers accepted, returning new product indexes in text order.
type mentionMatcher struct {
	tier       string
	candidates func(d *mentionDoc, st *mentionState) []int
}

// NewMentionExtractor creates a mention extractor over the given catalog
func NewMentionExtractor(c *catalog.Catalog, config MentionConfig) *MentionExtractor {
	if config.RecommendationWindow <= 0 {
		config.RecommendationWindow = defaultRecommendationWindow
	}
	if config.ComprehensiveWindow <= 0 {
		config.ComprehensiveWindow = defaultComprehensiveWindow
	}
	if config.MaxMentions <= 0 {
		config.MaxMentions = defaultMaxMentions
	}
	if config.MinMentions <= 0 {
		config.MinMentions = defaultMinMentions
	}
	if config.SectionMarker == "" {
		config.SectionMarker = defaultSectionMarker
	}
	config.SectionMarker = strings.ToLower(config.SectionMarker)

	e := &MentionExtractor{
		products: c.Products(),
		cfg:      config,
	}
	for _, p := range e.products {
		terms := []productTerm{{text: strings.ToLower(p.Name)}}
		for _, a := range c.Aliases(p.Name) {
			terms = append(terms, productTerm{text: a, alias: true})
		}
		e.terms = append(e.terms, terms)
	}

	withSignal := func(window int) func(d *mentionDoc, s span) bool {
		return func(d *mentionDoc, s span) bool { return d.signalNear(s, window) }
	}
	anywhere := func(*mentionDoc, span) bool { return true }

	e.chain = []mentionMatcher{
		{tier: tierRecommendation, candidates: func(d *mentionDoc, st *mentionState) []int {
			return d.productsWhere(d.names, st, withSignal(config.RecommendationWindow))
		}},
		{tier: tierExactFallback, candidates: func(d *mentionDoc, st *mentionState) []int {
			if st.tierHits[tierRecommendation] > 0 {
				return nil
			}
			return d.productsWhere(d.names, st, anywhere)
		}},
		{tier: tierComprehensive, candidates: func(d *mentionDoc, st *mentionState) []int {
			return d.productsWhere(d.names, st, withSignal(config.ComprehensiveWindow))
		}},
		{tier: tierAlias, candidates: func(d *mentionDoc, st *mentionState) []int {
			return d.productsWhere(d.aliases, st, anywhere)
		}},
		{tier: tierDirect, candidates: func(d *mentionDoc, st *mentionState) []int {
			return d.productsWhere(d.names, st, anywhere)
		}},
	}

	return e
}

// Extract returns the products recommended in text, at most MaxMentions,
// de-duplicated and in order of acceptance. It never fails.
func (e *MentionExtractor) Extract(text string) []domain.ProductMention {
	mentions := []domain.ProductMention{}
	if strings.TrimSpace(text) == "" {
		return mentions
	}

	doc := e.scan(text)
	st := &mentionState{seen: make(map[int]bool), tierHits: make(map[string]int)}

	for _, m := range e.chain {
		for _, idx := range m.candidates(doc, st) {
			if st.seen[idx] {
				continue
			}
			st.seen[idx] = true
			st.accepted = append(st.accepted, idx)
			st.tierHits[m.tier]++
			if e.cfg.Verbose {
				log.Info().Str("tier", m.tier).Str("product", e.products[idx].Name).Msg("[EXTRACT] accepted product")
			}
		}
	}

	for _, idx := range e.selectFinal(doc, st.accepted) {
		mentions = append(mentions, domain.MentionFromProduct(e.products[idx]))
	}

	if e.cfg.Verbose {
		log.Info().Int("candidates", len(st.accepted)).Int("mentions", len(mentions)).Msg("[EXTRACT] extraction complete")
	}
	return mentions
}

// selectFinal keeps accepted products mentioned before the reviews section,
// padding from the whole pool when too few remain
func (e *MentionExtractor) selectFinal(d *mentionDoc, accepted []int) []int {
	var final []int
	picked := make(map[int]bool)

	for _, idx := range accepted {
		if len(final) == e.cfg.MaxMentions {
			break
		}
		if d.firstOccurrence(idx) < d.cutoff {
			final = append(final, idx)
			picked[idx] = true
		}
	}

	if len(final) < e.cfg.MinMentions {
		for _, idx := range accepted {
			if len(final) == e.cfg.MaxMentions {
				break
			}
			if !picked[idx] {
				final = append(final, idx)
				picked[idx] = true
				if e.cfg.Verbose {
					log.Info().Str("product", e.products[idx].Name).Msg("[EXTRACT] padded from candidate pool")
				}
			}
		}
	}

	return final
}

// scan lower-cases text and records every term and signal occurrence.
// A term occurrence lying inside a longer occurrence of another product's
// term is dropped, so "bond boost" inside "bond boost for new wash" only
// counts for the longer product.
func (e *MentionExtractor) scan(text string) *mentionDoc {
	lower := strings.ToLower(text)
	d := &mentionDoc{
		text:    lower,
		cutoff:  len(lower),
		names:   make(map[int][]span),
		aliases: make(map[int][]span),
	}
	if i := strings.Index(lower, e.cfg.SectionMarker); i >= 0 {
		d.cutoff = i
	}

	type occurrence struct {
		span
		product int
		alias   bool
	}
	var all []occurrence
	for idx, terms := range e.terms {
		for _, t := range terms {
			for _, s := range findTerm(lower, t.text, true) {
				all = append(all, occurrence{span: s, product: idx, alias: t.alias})
			}
		}
	}

	for _, o := range all {
		shadowed := false
		for _, other := range all {
			if other.product != o.product && other.length() > o.length() &&
				other.start <= o.start && o.end <= other.end {
				shadowed = true
				break
			}
		}
		if shadowed {
			continue
		}
		if o.alias {
			d.aliases[o.product] = append(d.aliases[o.product], o.span)
		} else {
			d.names[o.product] = append(d.names[o.product], o.span)
		}
	}

	for _, sig := range recommendationSignals {
		d.signals = append(d.signals, findTerm(lower, sig, false)...)
	}

	return d
}

// signalNear reports whether a signal phrase lies entirely within window
// characters of s
func (d *mentionDoc) signalNear(s span, window int) bool {
	lo, hi := s.start-window, s.end+window
	for _, sig := range d.signals {
		if sig.start >= lo && sig.end <= hi {
			return true
		}
	}
	return false
}

// productsWhere returns products not yet accepted that have an occurrence
// satisfying pred, ordered by that occurrence's position
func (d *mentionDoc) productsWhere(occ map[int][]span, st *mentionState, pred func(*mentionDoc, span) bool) []int {
	type hit struct{ product, pos int }
	var hits []hit
	for idx, spans := range occ {
		if st.seen[idx] {
			continue
		}
		for _, s := range spans {
			if pred(d, s) {
				hits = append(hits, hit{product: idx, pos: s.start})
				break
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].product < hits[j].product
	})

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.product
	}
	return out
}

// firstOccurrence is the earliest position of any of the product's terms
func (d *mentionDoc) firstOccurrence(idx int) int {
	first := len(d.text)
	for _, s := range d.names[idx] {
		if s.start < first {
			first = s.start
		}
	}
	for _, s := range d.aliases[idx] {
		if s.start < first {
			first = s.start
		}
	}
	return first
}

// findTerm returns all occurrences of term in text that start on a word
// boundary and, when bothEnds is set, also end on one
func findTerm(text, term string, bothEnds bool) []span {
	if term == "" {
		return nil
	}
	var spans []span
	for from := 0; from < len(text); {
		i := strings.Index(text[from:], term)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(term)
		if (start == 0 || !isWordByte(text[start-1])) &&
			(!bothEnds || end == len(text) || !isWordByte(text[end])) {
			spans = append(spans, span{start: start, end: end})
		}
		from = start + 1
	}
	return spans
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
