// Package seed holds the bundled storefront dataset used when no cached copy exists.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/and161185/neverland-admin/internal/model"
)

//go:embed data/*.json
var data embed.FS

func decode[T any](name string) []T {
	b, err := data.ReadFile("data/" + name)
	if err != nil {
		panic(fmt.Sprintf("seed: %s: %v", name, err))
	}
	var out []T
	if err := json.Unmarshal(b, &out); err != nil {
		panic(fmt.Sprintf("seed: %s: %v", name, err))
	}
	return out
}

// Games returns a fresh copy of the default catalog.
func Games() []model.Game { return decode[model.Game]("games.json") }

// Testimonials returns a fresh copy of the default testimonials.
func Testimonials() []model.Testimonial { return decode[model.Testimonial]("testimonials.json") }

// FAQs returns a fresh copy of the default FAQ list.
func FAQs() []model.FAQ { return decode[model.FAQ]("faqs.json") }
