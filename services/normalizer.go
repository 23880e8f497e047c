package services

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"listing-map/models"
	"listing-map/utils"
)

const (
	fileColumnPrefix    = "file_"
	defaultAddressTitle = "Address"
)

// resourceBaseRegexp matches the protected asset prefix found in file column text.
var resourceBaseRegexp = regexp.MustCompile(`https://[^\s,]*\.monday\.com/protected_static/\d+/resources/`)

// itemSchema is the typed view of one item's columns, resolved once per item.
// A nil field means no column matched; that is never an error.
type itemSchema struct {
	Address *models.RawColumnValue
	Status  *models.RawColumnValue
	Images  []*models.RawColumnValue
}

func resolveSchema(cols []models.RawColumnValue) itemSchema {
	var s itemSchema
	for i := range cols {
		c := &cols[i]
		title := strings.ToLower(c.Column.Title)
		if s.Address == nil && strings.Contains(title, "address") {
			s.Address = c
		}
		if s.Status == nil && strings.Contains(title, "status") {
			s.Status = c
		}
		if strings.HasPrefix(c.ID, fileColumnPrefix) {
			s.Images = append(s.Images, c)
		}
	}
	return s
}

type statusSettings struct {
	LabelsColors map[string]struct {
		Color string `json:"color"`
	} `json:"labels_colors"`
}

type statusValue struct {
	Index *int `json:"index"`
}

func decodeStatusSettings(raw string) (statusSettings, bool) {
	var s statusSettings
	if raw == "" || json.Unmarshal([]byte(raw), &s) != nil {
		return statusSettings{}, false
	}
	return s, true
}

func decodeStatusValue(raw string) (statusValue, bool) {
	var v statusValue
	if raw == "" || json.Unmarshal([]byte(raw), &v) != nil || v.Index == nil {
		return statusValue{}, false
	}
	return v, true
}

// StatusColor resolves a status cell's label color. ok is false when either
// document fails to decode or the label has no color.
func StatusColor(col *models.RawColumnValue) (string, bool) {
	if col == nil {
		return "", false
	}
	settings, ok := decodeStatusSettings(col.Column.SettingsStr)
	if !ok {
		return "", false
	}
	value, ok := decodeStatusValue(col.Value)
	if !ok {
		return "", false
	}
	label, ok := settings.LabelsColors[strconv.Itoa(*value.Index)]
	if !ok || label.Color == "" {
		return "", false
	}
	return label.Color, true
}

// flexBool accepts both "true" and true.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*b = flexBool(strings.EqualFold(s, "true"))
	return nil
}

type fileDescriptor struct {
	Name     string   `json:"name"`
	AssetID  any      `json:"assetId"`
	IsImage  flexBool `json:"isImage"`
	FileType string   `json:"fileType"`
}

type fileValue struct {
	Files []fileDescriptor `json:"files"`
}

func decodeFileValue(raw string) (fileValue, bool) {
	var v fileValue
	if raw == "" || json.Unmarshal([]byte(raw), &v) != nil {
		return fileValue{}, false
	}
	return v, true
}

// ImageURLs extracts image links from a file column. Files pair with the URLs
// in the text by position when the counts agree; otherwise each URL is
// rebuilt from the protected resource base. Non-image files are skipped.
func ImageURLs(col *models.RawColumnValue) []string {
	if col == nil || col.Value == "" || col.Text == "" {
		return nil
	}
	fv, ok := decodeFileValue(col.Value)
	if !ok {
		return nil
	}

	urls := splitURLs(col.Text)
	positional := len(urls) == len(fv.Files)
	base := resourceBaseRegexp.FindString(col.Text)

	var out []string
	for i, f := range fv.Files {
		if !isImage(f) {
			continue
		}
		switch {
		case positional:
			out = append(out, urls[i])
		case base != "" && f.Name != "" && f.AssetID != nil:
			out = append(out, strings.TrimRight(base, "/")+"/"+assetIDString(f.AssetID)+"/"+f.Name)
		}
	}
	return out
}

func isImage(f fileDescriptor) bool {
	return bool(f.IsImage) || strings.EqualFold(f.FileType, "image")
}

func assetIDString(v any) string {
	switch id := v.(type) {
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case string:
		return id
	default:
		return ""
	}
}

func splitURLs(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Normalizer turns raw board items into display-ready listings.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize flattens boards into listings. Bad column data leaves the
// affected field empty and never drops an item.
func (n *Normalizer) Normalize(boards []models.RawBoard) []*models.ListingItem {
	var out []*models.ListingItem
	for _, b := range boards {
		for _, raw := range b.Items {
			out = append(out, n.normalizeItem(b.ID, raw))
		}
	}
	n.logger.Debug("[normalizer] Normalized %d items from %d boards", len(out), len(boards))
	return out
}

func (n *Normalizer) normalizeItem(boardID string, raw models.RawItem) *models.ListingItem {
	schema := resolveSchema(raw.ColumnValues)

	item := &models.ListingItem{
		ID:           raw.ID,
		BoardID:      boardID,
		Name:         normaliseText(raw.Name),
		AddressTitle: defaultAddressTitle,
		ImageURLs:    []string{},
	}

	if schema.Address != nil {
		item.Address = normaliseText(schema.Address.Text)
		item.AddressTitle = schema.Address.Column.Title
	}

	if color, ok := StatusColor(schema.Status); ok {
		item.StatusColor = color
	} else if schema.Status != nil {
		n.logger.Debug("[normalizer] Item %s: no status color", raw.ID)
	}

	for _, col := range schema.Images {
		item.ImageURLs = append(item.ImageURLs, ImageURLs(col)...)
	}
	if len(item.ImageURLs) > 0 {
		item.ThumbnailURL = item.ImageURLs[0]
	}

	item.Columns = make([]models.DisplayColumn, 0, len(raw.ColumnValues))
	for i := range raw.ColumnValues {
		c := &raw.ColumnValues[i]
		dc := models.DisplayColumn{
			ID:     c.ID,
			Title:  c.Column.Title,
			Text:   c.Text,
			Hidden: strings.HasPrefix(c.ID, fileColumnPrefix),
		}
		if c == schema.Status {
			dc.Color = item.StatusColor
		}
		item.Columns = append(item.Columns, dc)
	}

	return item
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// CacheKey is the normalized form of an address used for geocode memoization.
func CacheKey(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
