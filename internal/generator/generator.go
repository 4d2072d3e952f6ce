package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/wakili/backend/internal/domain"
	"github.com/wakili/backend/internal/service"
)

// Dataset contains the generated lawyers and their testimonials.
type Dataset struct {
	Lawyers      []service.LawyerInput      `json:"lawyers"`
	Testimonials []service.TestimonialInput `json:"testimonials"`
}

// Generator produces a deterministic directory of Arabic lawyer profiles.
type Generator struct {
	cfg       Config
	rand      *rand.Rand
	fragments nameFragments
	nowFn     func() time.Time
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	def := DefaultConfig()
	if cfg.NumLawyers <= 0 {
		cfg.NumLawyers = def.NumLawyers
	}
	if cfg.MaxTestimonials < 0 {
		cfg.MaxTestimonials = 0
	}
	if cfg.UnavailableChance < 0 {
		cfg.UnavailableChance = def.UnavailableChance
	}
	if cfg.EnglishChance < 0 {
		cfg.EnglishChance = def.EnglishChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultNameFragments(),
		nowFn:     time.Now,
	}
}

// WithClock overrides the reference time that creation dates are spread
// back from.
func (g *Generator) WithClock(nowFn func() time.Time) {
	if nowFn != nil {
		g.nowFn = nowFn
	}
}

// Generate synthesises lawyers and testimonials. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	now := g.nowFn().UTC().Truncate(time.Second)
	lawyers := make([]service.LawyerInput, g.cfg.NumLawyers)
	var testimonials []service.TestimonialInput

	for i := 0; i < g.cfg.NumLawyers; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		lawyerID := fmt.Sprintf("LAW-%05d", i+1)
		createdAt := now.Add(-time.Duration(g.rand.Intn(2*365*24)) * time.Hour)
		specs := g.randomSpecializations()
		years := 1 + g.rand.Intn(35)

		lawyers[i] = service.LawyerInput{
			ID:                lawyerID,
			FullName:          g.randomFullName(),
			Title:             g.randomTitle(years),
			City:              g.randomCity(),
			Specializations:   specs,
			Languages:         g.randomLanguages(),
			YearsOfExperience: years,
			ConsultationFee:   float64(150 + 50*g.rand.Intn(28)),
			Bio:               g.randomBio(specs[0], years),
			Available:         g.rand.Float64() >= g.cfg.UnavailableChance,
			CreatedAt:         &createdAt,
		}

		count := 0
		if g.cfg.MaxTestimonials > 0 {
			count = g.rand.Intn(g.cfg.MaxTestimonials + 1)
		}
		for j := 0; j < count; j++ {
			written := createdAt.Add(time.Duration(g.rand.Int63n(int64(now.Sub(createdAt)) + 1)))
			testimonials = append(testimonials, service.TestimonialInput{
				ID:         fmt.Sprintf("TST-%05d-%02d", i+1, j+1),
				LawyerID:   lawyerID,
				ClientName: g.randomClientName(),
				Rating:     g.randomRating(),
				Comment:    g.fragments.comments[g.rand.Intn(len(g.fragments.comments))],
				CreatedAt:  &written,
			})
		}
	}

	return Dataset{Lawyers: lawyers, Testimonials: testimonials}, nil
}

func (g *Generator) randomFullName() string {
	first := g.fragments.male
	if g.rand.Intn(3) == 0 {
		first = g.fragments.female
	}
	return fmt.Sprintf("%s %s", first[g.rand.Intn(len(first))],
		g.fragments.family[g.rand.Intn(len(g.fragments.family))])
}

// randomClientName shortens the family name to an initial the way reviews
// are shown publicly.
func (g *Generator) randomClientName() string {
	first := g.fragments.male
	if g.rand.Intn(2) == 0 {
		first = g.fragments.female
	}
	family := []rune(g.fragments.family[g.rand.Intn(len(g.fragments.family))])
	initial := family[0]
	if len(family) > 2 && string(family[:2]) == "ال" {
		initial = family[2]
	}
	return fmt.Sprintf("%s %c.", first[g.rand.Intn(len(first))], initial)
}

func (g *Generator) randomTitle(years int) string {
	switch {
	case years >= 20:
		return "مستشار قانوني أول"
	case years >= 10:
		return "مستشار قانوني"
	default:
		return "محامٍ"
	}
}

func (g *Generator) randomCity() string {
	return g.fragments.cities[g.rand.Intn(len(g.fragments.cities))]
}

func (g *Generator) randomSpecializations() []string {
	count := 1 + g.rand.Intn(3)
	perm := g.rand.Perm(len(domain.Specializations))
	out := make([]string, 0, count)
	for _, idx := range perm[:count] {
		out = append(out, domain.Specializations[idx].Code)
	}
	return out
}

func (g *Generator) randomLanguages() []string {
	langs := []string{"ar"}
	if g.rand.Float64() < g.cfg.EnglishChance {
		langs = append(langs, "en")
	}
	if g.rand.Intn(10) == 0 {
		langs = append(langs, []string{"fr", "ur"}[g.rand.Intn(2)])
	}
	return langs
}

func (g *Generator) randomBio(spec string, years int) string {
	label := spec
	for _, s := range domain.Specializations {
		if s.Code == spec {
			label = s.LabelAR
			break
		}
	}
	opening := g.fragments.bioOpenings[g.rand.Intn(len(g.fragments.bioOpenings))]
	return fmt.Sprintf("%s %s بخبرة %d عاماً في المحاكم السعودية، ويقدم الاستشارات وصياغة المذكرات والتمثيل أمام الجهات القضائية.", opening, label, years)
}

// randomRating skews towards the upper half of the scale.
func (g *Generator) randomRating() int {
	weights := []int{1, 2, 6, 14, 22}
	total := 0
	for _, w := range weights {
		total += w
	}
	pick := g.rand.Intn(total)
	for i, w := range weights {
		if pick < w {
			return i + 1
		}
		pick -= w
	}
	return 5
}

type nameFragments struct {
	male        []string
	female      []string
	family      []string
	cities      []string
	bioOpenings []string
	comments    []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		male:   []string{"أحمد", "محمد", "عبدالله", "خالد", "فهد", "سلطان", "عبدالرحمن", "فيصل", "ناصر", "تركي", "سعود", "يوسف", "عمر", "ماجد"},
		female: []string{"نورة", "سارة", "ريم", "هيفاء", "لمى", "منيرة", "الجوهرة", "دانة", "أمل", "هند"},
		family: []string{"العتيبي", "القحطاني", "الدوسري", "الشهري", "الغامدي", "الزهراني", "المطيري", "الحربي", "السبيعي", "العنزي", "الشمري", "باوزير"},
		cities: []string{"الرياض", "جدة", "مكة المكرمة", "المدينة المنورة", "الدمام", "الخبر", "أبها", "تبوك", "بريدة", "حائل"},
		bioOpenings: []string{
			"محامٍ مرخص متخصص في",
			"مستشار قانوني يركز على قضايا",
			"يعمل في مجال",
		},
		comments: []string{
			"شرح لي الموقف القانوني بوضوح وساعدني في اتخاذ القرار المناسب.",
			"استشارة مفيدة جداً والتزام تام بالموعد.",
			"تعامل راقٍ ومتابعة مستمرة حتى انتهاء القضية.",
			"أنصح به بشدة في قضايا العمل.",
			"ردود سريعة ومعرفة واسعة بالأنظمة.",
			"كان بالإمكان أن تكون الاستشارة أطول، لكنها كانت مفيدة.",
			"ساعدني في مراجعة العقد قبل التوقيع وجنبني مشاكل كثيرة.",
			"",
		},
	}
}
