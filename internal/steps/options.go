package steps

import "strings"

// CustomOption selects free text in place of a preset value.
const CustomOption = "custom"

// Option is one selectable preset with its display text.
type Option struct {
	Value       string
	Label       string
	Description string
}

// Options is an ordered preset catalogue.
type Options []Option

// Find returns the option with value.
func (o Options) Find(value string) (Option, bool) {
	for _, opt := range o {
		if opt.Value == value {
			return opt, true
		}
	}
	return Option{}, false
}

// Values lists the option values in order.
func (o Options) Values() []string {
	out := make([]string, len(o))
	for i, opt := range o {
		out[i] = opt.Value
	}
	return out
}

// Default is the first option.
func (o Options) Default() string {
	if len(o) == 0 {
		return ""
	}
	return o[0].Value
}

// resolve returns the value to send for choice, which may be CustomOption
// with custom text. An empty choice selects the default.
func (o Options) resolve(field, choice, custom string) (string, error) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return o.Default(), nil
	}
	if choice == CustomOption {
		custom = strings.TrimSpace(custom)
		if custom == "" {
			return "", invalid(field, "Please enter a custom %s", strings.ReplaceAll(field, "_", " "))
		}
		return custom, nil
	}
	if _, ok := o.Find(choice); !ok {
		return "", invalid(field, "Unknown %s %q (choose one of %s or %s)",
			strings.ReplaceAll(field, "_", " "), choice, strings.Join(o.Values(), ", "), CustomOption)
	}
	return choice, nil
}

// resolveStrict is resolve without the custom escape hatch.
func (o Options) resolveStrict(field, choice string) (string, error) {
	if strings.TrimSpace(choice) == CustomOption {
		return "", invalid(field, "Unknown %s %q", field, choice)
	}
	return o.resolve(field, choice, "")
}

// ScriptFormats are the ad durations offered for scripts.
var ScriptFormats = Options{
	{Value: "15-second", Label: "15‑second spot", Description: "Very short burst: brand/product intro, quick hook, ending with CTA. Ideal for social or TV where brevity matters."},
	{Value: "30-second", Label: "30‑second spot", Description: "Standard commercial length. Enables a basic narrative (problem → solution → CTA), most commonly purchased time slot."},
	{Value: "60-second", Label: "60‑second (or longer)", Description: "Infomercial or longer-form storytelling. Useful when you need explanation or emotion-building."},
}

// CreativeStrategies are the messaging strategies offered for scripts.
var CreativeStrategies = Options{
	{Value: "informational", Label: "Informational / Generic", Description: "Straightforward description or category messaging; best for new products/categories."},
	{Value: "usp", Label: "Unique Selling Proposition (USP)", Description: "Focuses on one standout feature/benefit that matters to consumers."},
	{Value: "comparative", Label: "Comparative", Description: "Direct comparison vs. competitor(s), used cautiously to avoid legal or backlash."},
	{Value: "transformational", Label: "Transformational", Description: "Emotional appeal that portrays how the product changes a consumer's life."},
	{Value: "brand-image", Label: "Brand‑image / Lifestyle", Description: "Associates product with a desired lifestyle, identity, or status."},
	{Value: "use-occasion", Label: "Use‑occasion", Description: "Frames product around a specific use‑case or moment (e.g., \"for your morning commute\")."},
}

// ExecutionStyles are the delivery styles offered for scripts.
var ExecutionStyles = Options{
	{Value: "flashy", Label: "Flashy / Energetic Promo", Description: "Fast pacing, upbeat tone, dynamic visuals or punchy audio. Great for impulse buys or social ads."},
	{Value: "story-driven", Label: "Story‑driven / Narrative", Description: "Build an emotional journey: character, conflict, resolution using the product."},
	{Value: "host-read", Label: "Host‑read / Endorsement style", Description: "A familiar voice or influencer gives a personal recommendation."},
	{Value: "demo", Label: "Demo or Tutorial", Description: "Product in action with walkthrough or explanation (common for tech or complex products)."},
	{Value: "jingle", Label: "Jingle / Musical hook", Description: "Uses music, slogan or rhyme to boost recall (think jingles or catchy slogans)."},
}

// ImageStyles, ImageTones and ImageSizes are the image generation choices.
var (
	ImageStyles = Options{
		{Value: "realistic", Label: "Realistic"},
		{Value: "artistic", Label: "Artistic"},
		{Value: "minimalist", Label: "Minimalist"},
		{Value: "vintage", Label: "Vintage"},
		{Value: "modern", Label: "Modern"},
		{Value: "fantasy", Label: "Fantasy"},
	}
	ImageTones = Options{
		{Value: "professional", Label: "Professional"},
		{Value: "fun", Label: "Fun"},
		{Value: "luxury", Label: "Luxury"},
		{Value: "casual", Label: "Casual"},
		{Value: "dramatic", Label: "Dramatic"},
		{Value: "peaceful", Label: "Peaceful"},
	}
	ImageSizes = Options{
		{Value: "1024x1024", Label: "Square (1024x1024)"},
		{Value: "1792x1024", Label: "Landscape (1792x1024)"},
		{Value: "1024x1792", Label: "Portrait (1024x1792)"},
	}
)

// VoicePresets are the text-to-speech voices offered by the voice step.
// Values are ElevenLabs voice IDs.
var VoicePresets = Options{
	{Value: "kdmDKE6EkgrWrrykO9Qt", Label: "Alexandra", Description: "A super realistic, young female voice that likes to chat"},
	{Value: "L0Dsvb3SLTyegXwtm47J", Label: "Archer", Description: "Grounded and friendly young British male with charm"},
	{Value: "g6xIsTj2HwM6VR4iXFCw", Label: "Jessica Anne Bogart", Description: "Empathetic and expressive, great for wellness coaches"},
	{Value: "OYTbf65OHHFELVut7v2H", Label: "Hope", Description: "Bright and uplifting, perfect for positive interactions"},
	{Value: "dj3G1R1ilKoFKhBnWOzG", Label: "Eryn", Description: "Friendly and relatable, ideal for casual interactions"},
	{Value: "HDA9tsk27wYi3uq0fPcK", Label: "Stuart", Description: "Professional & friendly Aussie, ideal for technical assistance"},
	{Value: "1SM7GgM6IMuvQlz2BwM3", Label: "Mark", Description: "Relaxed and laid back, suitable for nonchalant chats"},
	{Value: "PT4nqlKZfc06VW1BuClj", Label: "Angela", Description: "Raw and relatable, great listener and down to earth"},
	{Value: "vBKc2FfBKJfcZNyEt1n6", Label: "Finn", Description: "Tenor pitched, excellent for podcasts and light chats"},
	{Value: "56AoDkrOh6qfVPDXZ7Pt", Label: "Cassidy", Description: "Engaging and energetic, good for entertainment contexts"},
	{Value: "NOpBlnGInO9m6vDvFkFC", Label: "Grandpa Spuds Oxley", Description: "Distinctive character voice for unique agents"},
}
