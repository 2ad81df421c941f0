package accounts

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// avatarURL derives a gravatar URL from an email address. It is pure: the
// same email always yields the same URL. The parameters pin a 200px size, a
// pg content rating and the "mystery man" fallback for addresses with no
// hosted image.
func avatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))

	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")

	u := url.URL{
		Scheme:   "https",
		Host:     "www.gravatar.com",
		Path:     "/avatar/" + hex.EncodeToString(sum[:]),
		RawQuery: q.Encode(),
	}
	return u.String()
}
