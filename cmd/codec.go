package main

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/flox/internal/codec"
	"github.com/desertthunder/flox/internal/flo"
	"github.com/desertthunder/flox/internal/shared"
	"github.com/urfave/cli/v3"
)

// CodecEncode prints the encoded form and public URL of a numeric playlist ID.
func (r *Runner) CodecEncode(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("id")
	if raw == "" {
		return fmt.Errorf("%w: playlist ID is required", shared.ErrMissingArgument)
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a playlist ID", shared.ErrInvalidArgument, raw)
	}

	encoded := codec.Encode(id)
	r.writePlain("%s\n", encoded)
	r.writePlain("%s\n", r.palette.Help(flo.PublicURLBase+encoded))
	return nil
}

// CodecDecode prints the numeric playlist ID for an encoded value or public playlist URL.
func (r *Runner) CodecDecode(ctx context.Context, cmd *cli.Command) error {
	value := cmd.StringArg("value")
	if value == "" {
		return fmt.Errorf("%w: encoded ID or URL is required", shared.ErrMissingArgument)
	}

	encoded, err := encodedSegment(value)
	if err != nil {
		return err
	}

	id, err := codec.Decode(encoded)
	if err != nil {
		return err
	}

	r.writePlain("%d\n", id)
	return nil
}

// encodedSegment returns value itself, or the last path segment when value is a URL.
func encodedSegment(value string) (string, error) {
	if !strings.Contains(value, "/") {
		return value, nil
	}

	u, err := url.Parse(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	segments := strings.Split(strings.TrimSuffix(u.Path, "/"), "/")
	last := segments[len(segments)-1]
	if last == "" {
		return "", fmt.Errorf("%w: %s has no playlist segment", shared.ErrInvalidArgument, value)
	}
	return last, nil
}
