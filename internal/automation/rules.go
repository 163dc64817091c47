package automation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"whatsapp-responder/internal/config"
	"whatsapp-responder/internal/whatsapp"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

type ActionType string

const (
	ActionText   ActionType = "text"
	ActionButton ActionType = "button"
	ActionMenu   ActionType = "menu"
)

// Action is one canned reply. Text may contain {{contact_name}} and {{message}}.
type Action struct {
	Type       ActionType            `yaml:"type" validate:"required,oneof=text button menu"`
	Text       string                `yaml:"text" validate:"required"`
	ButtonText string                `yaml:"button_text"`
	URL        string                `yaml:"url" validate:"omitempty,url"`
	Buttons    []whatsapp.MenuButton `yaml:"buttons" validate:"max=3,dive"`
}

// Rule is a keyword category. A message matches when it contains any keyword.
type Rule struct {
	Name     string   `yaml:"name" validate:"required"`
	Keywords []string `yaml:"keywords" validate:"required,min=1,dive,required"`
	Action   Action   `yaml:"action"`
}

// Rules are evaluated in order, first match wins. Fallback fires when no
// category matches.
type Rules struct {
	Categories []Rule `yaml:"categories" validate:"required,min=1,dive"`
	Fallback   Action `yaml:"fallback"`
}

const (
	CategoryWebsite   = "website"
	CategoryLocation  = "location"
	CategoryWholesale = "wholesale"
	CategorySupport   = "support"

	// Menu button ids double as keywords when the user taps them.
	ButtonStoreLink      = "link"
	ButtonSupportRequest = "support_request"
)

// DefaultRules is the built-in catalog. Each keyword belongs to exactly one
// category; "موقع" is a location keyword so "موقع جملة" resolves to location.
func DefaultRules(cfg *config.Config) *Rules {
	supportMsg := fmt.Sprintf("📞 *خدمة العملاء*\n\nيمكنك التواصل مباشرة مع أحد موظفينا عبر الرقم التالي:\n\n📱 *%s*\n\nأو اضغط الرابط للمحادثة المباشرة 👇:\nhttps://wa.me/%s",
		cfg.SupportPhoneNumber, cfg.SupportPhoneNumber)

	rules := &Rules{
		Categories: []Rule{
			{
				Name:     CategoryWebsite,
				Keywords: []string{"رابط", "متجر", "طلب", "link", "website", "shop"},
				Action: Action{
					Type:       ActionButton,
					Text:       "يمكنكم الطلب عبر المتجر الإلكتروني الخاص بنا 👇",
					ButtonText: "Visit Store",
					URL:        cfg.StoreURL,
				},
			},
			{
				Name:     CategoryLocation,
				Keywords: []string{"وين", "موقع", "فرع", "مكان", "خريطة", "لوكيشن", "location", "map"},
				Action: Action{
					Type:       ActionButton,
					Text:       "تفضل بزيارة فرعنا بخميس مشيط 👇",
					ButtonText: "Open Map",
					URL:        cfg.MapURL,
				},
			},
			{
				Name:     CategoryWholesale,
				Keywords: []string{"جمله", "جملة", "كميات", "wholesale", "bulk", "توريد"},
				Action: Action{
					Type: ActionText,
					Text: "سوف يتم الرد عليك قريبا بخصوص الجملة ⏳",
				},
			},
			{
				Name: CategorySupport,
				Keywords: []string{"دعم", "مساعدة", "تحدث", "موظف", "خدمة", "عملاء",
					"support", "help", "human", "call", "agent", ButtonSupportRequest},
				Action: Action{
					Type: ActionText,
					Text: supportMsg,
				},
			},
		},
		Fallback: Action{
			Type: ActionMenu,
			Text: "مرحباً بك في عسكر الجنوب 🤝\nكيف يمكننا مساعدتك؟",
			Buttons: []whatsapp.MenuButton{
				{ID: ButtonStoreLink, Title: "رابط المتجر 🛒"},
				{ID: ButtonSupportRequest, Title: "تحدث مع موظف 🙋‍♂️"},
			},
		},
	}
	rules.normalize()
	return rules
}

// LoadRules reads a YAML rules file and validates it.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRules(data)
}

func ParseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	rules.normalize()
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (r *Rules) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}

	var errs []error
	seen := make(map[string]bool, len(r.Categories))
	for _, rule := range r.Categories {
		if seen[rule.Name] {
			errs = append(errs, fmt.Errorf("duplicate category %q", rule.Name))
		}
		seen[rule.Name] = true
		if err := rule.Action.check(); err != nil {
			errs = append(errs, fmt.Errorf("category %q: %w", rule.Name, err))
		}
	}
	if err := r.Fallback.check(); err != nil {
		errs = append(errs, fmt.Errorf("fallback: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	return nil
}

func (a Action) check() error {
	switch a.Type {
	case ActionButton:
		if a.ButtonText == "" || a.URL == "" {
			return errors.New("button action needs button_text and url")
		}
	case ActionMenu:
		if len(a.Buttons) == 0 {
			return errors.New("menu action needs at least one button")
		}
	}
	return nil
}

// normalize lower-cases and trims keywords so they compare against the
// lower-cased message text.
func (r *Rules) normalize() {
	for i := range r.Categories {
		kws := r.Categories[i].Keywords[:0]
		for _, kw := range r.Categories[i].Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		r.Categories[i].Keywords = kws
	}
}

// Match returns the first category with a keyword contained in text.
func (r *Rules) Match(text string) (*Rule, bool) {
	if text == "" {
		return nil, false
	}
	for i := range r.Categories {
		for _, kw := range r.Categories[i].Keywords {
			if strings.Contains(text, kw) {
				return &r.Categories[i], true
			}
		}
	}
	return nil, false
}
