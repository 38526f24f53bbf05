package console

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const Signature = " 🐇"

var (
	tpsPattern     = regexp.MustCompile(`.*?(\d{1,2}\.\d{1,2}).*?(\d{1,2}\.\d{1,2}).*?(\d{1,2}\.\d{1,2})`)
	versionPattern = regexp.MustCompile(`(?m)^§.(.*)§r$`)

	ErrUnexpectedOutput = errors.New("unexpected console output")
)

// VersionAttempts and VersionRetryDelay bound how long Version waits for the
// server to answer with its version line.
var (
	VersionAttempts   = 5
	VersionRetryDelay = 500 * time.Millisecond
)

// TPS reports the 1, 5 and 15 minute tick rates.
func TPS(c Client) (string, error) {
	out, err := c.Command("tps")
	if err != nil {
		return "", err
	}
	m := tpsPattern.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("%w: tps %q", ErrUnexpectedOutput, out)
	}
	var rates [3]float64
	for i := range rates {
		rates[i], _ = strconv.ParseFloat(m[i+1], 64)
	}
	return fmt.Sprintf("The current TPS is %.2f. Last 5 minutes, %.2f. Last 20 minutes, %.2f.%s",
		rates[0], rates[1], rates[2], Signature), nil
}

func Players(c Client) (string, error) {
	out, err := c.Command("list")
	if err != nil {
		return "", err
	}
	return out + Signature, nil
}

func Time(c Client) (string, error) {
	out, err := c.Command("time query daytime")
	if err != nil {
		return "", err
	}
	return out + ". (Day is from 0 to 12000)" + Signature, nil
}

// Version asks for the server version. The first answer after start-up is
// sometimes a "checking version" notice, so it retries a few times.
func Version(ctx context.Context, c Client) (string, error) {
	var out string
	for attempt := 0; attempt < VersionAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(VersionRetryDelay):
			}
		}
		var err error
		out, err = c.Command("version")
		if err != nil {
			return "", err
		}
		if m := versionPattern.FindStringSubmatch(out); m != nil {
			return m[1] + Signature, nil
		}
	}
	return "", fmt.Errorf("%w: version %q", ErrUnexpectedOutput, out)
}
