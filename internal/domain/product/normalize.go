// internal/domain/product/normalize.go
package product

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const imageDir = "imagenes/"

// PlaceholderImage is the inline graphic shown once every image candidate failed
const PlaceholderImage = `data:image/svg+xml,<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 400 300"><rect width="400" height="300" fill="%23f8fafc"/><text x="200" y="150" text-anchor="middle" fill="%23999" font-size="16">Imagen no disponible</text></svg>`

var (
	absoluteURLPattern = regexp.MustCompile(`(?i)^(https?:)?//`)
	htmlTagPattern     = regexp.MustCompile(`<[^>]+>`)
	escapedPattern     = regexp.MustCompile(`%[0-9A-Fa-f]{2}`)
)

// Parse decodes a products.json payload and normalizes every entry
func Parse(data []byte) ([]Product, error) {
	var raws []rawProduct
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	products := make([]Product, 0, len(raws))
	for i, raw := range raws {
		p, err := normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("product at index %d: %w", i, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func normalize(raw rawProduct) (Product, error) {
	id, err := raw.ID.Int64()
	if err != nil {
		return Product{}, fmt.Errorf("invalid id %q", raw.ID.String())
	}

	p := Product{
		ID:          id,
		SKU:         parseText(raw.SKU),
		Name:        raw.Name,
		Description: raw.Description,
		Image:       raw.Image,
		Images:      raw.Images,
		Video:       raw.Video,
		Category:    raw.Category,
		Tags:        raw.Tags,
		Features:    raw.Features,
		Specs:       raw.Specs,
		Rating:      raw.Rating,
		Reviews:     raw.Reviews,
		Featured:    raw.Featured,
	}

	if p.Name == "" {
		p.Name = raw.Title
	}
	if p.Description == "" {
		if raw.DescriptionHTML != "" {
			p.Description = htmlTagPattern.ReplaceAllString(raw.DescriptionHTML, "")
		} else {
			p.Description = raw.ShortDescription
		}
	}

	if len(p.Images) == 0 && p.Image != "" {
		p.Images = []string{p.Image}
	}
	p.Images = normalizeImages(p.Images)
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}

	for _, rv := range raw.Variants {
		v := Variant{
			ID:          parseText(rv.ID),
			Name:        rv.Name,
			Images:      normalizeImages(rv.Images),
			Description: rv.Description,
		}
		v.Price, _ = parseAmount(rv.Price)
		p.Variants = append(p.Variants, v)
	}

	price, _ := parseAmount(raw.Price)
	p.Price = price
	if original, ok := parseAmount(raw.OriginalPrice); ok {
		p.OriginalPrice = original
	} else {
		p.OriginalPrice = p.Price
	}

	return p, nil
}

func normalizeImages(images []string) []string {
	if len(images) == 0 {
		return images
	}
	out := make([]string, len(images))
	for i, src := range images {
		out[i] = resolveImagePath(src)
	}
	return out
}

// resolveImagePath maps a bare file name to the local image folder.
// Absolute URLs and anything that already looks like a path are kept.
func resolveImagePath(src string) string {
	if src == "" {
		return src
	}
	if absoluteURLPattern.MatchString(src) || strings.HasPrefix(src, "/") ||
		strings.HasPrefix(src, "./") || strings.Contains(src, "/") {
		return src
	}
	return imageDir + encodeURI(src)
}

// SafeSrc escapes an image path unless it is already percent-encoded
func SafeSrc(src string) string {
	if src == "" {
		return ""
	}
	if escapedPattern.MatchString(src) {
		return src
	}
	return encodeURI(src)
}

// ImageCandidates lists the paths a client should try, in order, before
// falling back to PlaceholderImage.
func ImageCandidates(src string) []string {
	if src == "" {
		return nil
	}

	seen := make(map[string]bool)
	var candidates []string
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			candidates = append(candidates, c)
		}
	}

	add(SafeSrc(src))
	plain := strings.TrimPrefix(src, "./")
	if plain == src {
		plain = strings.TrimPrefix(src, "/")
	}
	add(imageDir + encodeURI(plain))
	add("./" + imageDir + encodeURI(plain))
	add(encodeURI(plain))

	lower := strings.ToLower(plain)
	add(imageDir + encodeURI(lower))
	add(encodeURI(lower))

	return candidates
}

// encodeURI escapes everything except the characters JavaScript's encodeURI keeps
func encodeURI(s string) string {
	const keep = "-_.!~*'();,/?:@&=+$#"
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') ||
			strings.IndexByte(keep, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}
