package extract

import (
	"regexp"
	"strings"

	"github.com/ysmood/gson"
)

// maxAdScanDepth bounds the generic recursive key scan.
const maxAdScanDepth = 4

// adFlagKeys are explicit boolean sponsorship markers.
var adFlagKeys = []string{"is_ad", "is_sponsored", "sponsored", "advertisement"}

// adBadgePaths are the fixed badge/label text fields checked for ad words.
var adBadgePaths = []string{
	"data.badge.text",
	"data.label.text",
	"data.tag.text",
}

// adWordRe matches ad vocabulary as whole words, so "Washed Carrots" is
// never a false positive on "ad".
var adWordRe = regexp.MustCompile(`(?i)\b(ad|ads|advertisement|sponsored|sponsor|advert)\b`)

// adKeyRe matches JSON keys that name sponsorship fields.
var adKeyRe = regexp.MustCompile(`(?i)(^|_)(ad|ads|advert|advertisement|sponsor|sponsored|sponsorship)(_|$)`)

// IsSponsored reports whether a snippet represents paid placement.
//
// A snippet is sponsored when any one of these holds:
//  1. its widget type contains "ad" or "sponsor";
//  2. an explicit boolean flag (is_ad, is_sponsored, sponsored,
//     advertisement) is truthy, at the snippet root or under data;
//  3. a fixed badge/label text field, or any entry of the badge list,
//     whole-word-matches the ad vocabulary;
//  4. a depth-bounded recursive scan finds an ad-named key holding a
//     truthy or non-empty value.
func IsSponsored(sn gson.JSON) bool {
	wt := strings.ToLower(sn.Get("widget_type").Str())
	if strings.Contains(wt, "ad") || strings.Contains(wt, "sponsor") {
		return true
	}

	for _, key := range adFlagKeys {
		if truthy(sn.Get(key)) || truthy(sn.Get("data."+key)) {
			return true
		}
	}

	for _, path := range adBadgePaths {
		if adWordRe.MatchString(sn.Get(path).Str()) {
			return true
		}
	}
	for _, badge := range sn.Get("data.badges").Arr() {
		switch v := badge.Val().(type) {
		case string:
			if adWordRe.MatchString(v) {
				return true
			}
		default:
			if adWordRe.MatchString(badge.Get("text").Str()) {
				return true
			}
		}
	}

	return scanForAdKeys(sn.Val(), 0)
}

// scanForAdKeys is a pure, depth-bounded visitor over the generic JSON tree
// (map/list/scalar). Keys containing "address", "badge" or "label" only
// count when their own string value matches the ad vocabulary; this keeps
// delivery addresses and discount badges from tripping the scan.
func scanForAdKeys(v interface{}, depth int) bool {
	if depth > maxAdScanDepth {
		return false
	}
	switch node := v.(type) {
	case map[string]interface{}:
		for key, child := range node {
			lk := strings.ToLower(key)
			if adKeyRe.MatchString(lk) {
				if isExemptKey(lk) {
					if s, isStr := child.(string); isStr && adWordRe.MatchString(s) {
						return true
					}
				} else if truthyValue(child) {
					return true
				}
			}
			if scanForAdKeys(child, depth+1) {
				return true
			}
		}
	case []interface{}:
		for _, child := range node {
			if scanForAdKeys(child, depth+1) {
				return true
			}
		}
	}
	return false
}

func isExemptKey(key string) bool {
	return strings.Contains(key, "address") ||
		strings.Contains(key, "badge") ||
		strings.Contains(key, "label")
}

// truthyValue is the raw-value counterpart of truthy: non-empty strings,
// true booleans, non-zero numbers, and non-empty containers all count.
func truthyValue(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "false" && t != "0"
	case float64:
		return t != 0
	case int:
		return t != 0
	case map[string]interface{}:
		return len(t) > 0
	case []interface{}:
		return len(t) > 0
	default:
		return false
	}
}
