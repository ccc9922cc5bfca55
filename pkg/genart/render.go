package genart

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	jsonDataURIPrefix = "data:application/json;base64,"
	svgDataURIPrefix  = "data:image/svg+xml;base64,"

	svgHeader = `<svg width="1200" height="1200" viewBox="0 0 1200 1200" version="1.2" ` +
		`xmlns="http://www.w3.org/2000/svg" style="background-color:%s;background-image:`
	svgFooter = `;background-repeat:no-repeat;background-size:contain;` +
		`background-position:center;image-rendering:-webkit-optimize-contrast;` +
		`-ms-interpolation-mode:nearest-neighbor;image-rendering:-moz-crisp-edges;` +
		`image-rendering:pixelated;"></svg>`
)

// ResolvedTrait is the trait a token hash selects for one layer.
type ResolvedTrait struct {
	Layer    string
	Name     string
	Mimetype string
	Hide     bool
	Data     []byte
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type TokenMetadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Image       string      `json:"image,omitempty"`
	ImageData   string      `json:"image_data,omitempty"`
	Attributes  []Attribute `json:"attributes,omitempty"`
}

type ContractMetadata struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Image                string `json:"image"`
	Banner               string `json:"banner"`
	ExternalLink         string `json:"external_link"`
	SellerFeeBasisPoints uint64 `json:"seller_fee_basis_points"`
	FeeRecipient         string `json:"fee_recipient"`
}

// Attributes lists (layer, trait) pairs in layer order, skipping hidden traits.
func Attributes(traits []ResolvedTrait) []Attribute {
	attributes := make([]Attribute, 0, len(traits))
	for _, t := range traits {
		if t.Hide {
			continue
		}
		attributes = append(attributes, Attribute{TraitType: t.Layer, Value: t.Name})
	}
	return attributes
}

// ComposeSVG stacks the trait images as CSS backgrounds, first layer on top,
// and returns the svg as a base64 data URI.
func ComposeSVG(backgroundColor string, traits []ResolvedTrait) string {
	urls := make([]string, 0, len(traits))
	for _, t := range traits {
		if len(t.Data) == 0 {
			continue
		}
		urls = append(urls, fmt.Sprintf(
			"url(data:%s;base64,%s)", t.Mimetype, base64.StdEncoding.EncodeToString(t.Data),
		))
	}
	background := "none"
	if len(urls) > 0 {
		background = strings.Join(urls, ",")
	}

	svg := fmt.Sprintf(svgHeader, backgroundColor) + background + svgFooter
	return svgDataURIPrefix + base64.StdEncoding.EncodeToString([]byte(svg))
}

// OffChainImageURL is the image url of a token rendered by an external
// renderer from its dna.
func OffChainImageURL(baseURI string, tokenID uint64, hash, network string) string {
	return fmt.Sprintf("%s%d?dna=%s&network=%s", baseURI, tokenID, hash, network)
}

// JSONDataURI encodes v as a base64 json data URI.
func JSONDataURI(v any) (string, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return jsonDataURIPrefix + base64.StdEncoding.EncodeToString(buf), nil
}

// DecodeJSONDataURI is the inverse of JSONDataURI.
func DecodeJSONDataURI(uri string, v any) error {
	payload, ok := strings.CutPrefix(uri, jsonDataURIPrefix)
	if !ok {
		return fmt.Errorf("not a json data uri")
	}
	buf, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(buf, v)
}
