package auth

import (
	"encoding/base64"
	"math"
	"math/rand/v2"
	"strconv"
	"time"
)

// DeviceIDGenerator produces the x-gm-device-id sent with each sign-in.
//
// Values only need to be printable and best-effort unique; they carry no security guarantee.
type DeviceIDGenerator func() string

// deviceIDModulus bounds the seed before encoding.
const deviceIDModulus = 17100000001

// NewDeviceID mixes the current time with two random draws, base64 encodes the decimal form
// and keeps characters [1, 17) of the result.
func NewDeviceID() string {
	return deviceIDFrom(time.Now(), rand.Float64(), rand.Float64())
}

func deviceIDFrom(now time.Time, r1, r2 float64) string {
	seed := float64(now.UnixMilli())
	if r1 > 0 {
		seed /= r1
	}
	seed = math.Mod(seed*r2, deviceIDModulus)

	enc := base64.StdEncoding.EncodeToString([]byte(strconv.FormatFloat(seed, 'f', -1, 64)))
	if len(enc) <= 1 {
		return enc
	}
	return enc[1:min(17, len(enc))]
}
