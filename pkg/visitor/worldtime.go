package visitor

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
)

const datetimePrefix = "datetime:"

// LocalTime returns the raw local date-time for the IP address, as reported
// by the `datetime:` line of worldtimeapi's text format.
func (r *Resolver) LocalTime(ctx context.Context, ip string) (string, error) {
	u := fmt.Sprintf("%s/api/ip/%s.txt", r.worldtimeURL, url.PathEscape(ip))
	body, err := r.get(ctx, u)
	if err != nil {
		return "", err
	}
	datetime, ok := parseDatetime(body)
	if !ok {
		return "", fmt.Errorf("visitor: no datetime line in time response")
	}
	if _, _, ok := clock(datetime); !ok {
		return "", fmt.Errorf("visitor: malformed datetime %q", datetime)
	}
	return datetime, nil
}

func parseDatetime(body []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if v, ok := strings.CutPrefix(line, datetimePrefix); ok {
			v = strings.TrimSpace(v)
			return v, v != ""
		}
	}
	return "", false
}
