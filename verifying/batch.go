package verifying

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/ethproof/ethash"
)

// Request is one header to verify with its own epoch and proof.
type Request struct {
	Epoch  ethash.EpochParams
	Header Header
	Proof  []byte
}

// Result is the outcome of one Request. Err is nil iff the header is valid.
type Result struct {
	Header   Header
	Consumed uint32
	Err      error
}

// VerifyBatch verifies independent headers concurrently. A rejected header
// does not affect the others; the returned error is only set when ctx is
// done before all headers were checked.
func VerifyBatch(ctx context.Context, reqs []Request, opts ...OptionFunc) ([]Result, error) {
	options, err := applyOpts(opts...)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(options.workers)
	for i := range reqs {
		i := i
		req := &reqs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			consumed, err := verifyHeader(req.Epoch, req.Header, req.Proof, options.logger)
			results[i] = Result{Header: req.Header, Consumed: consumed, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// VerifyPacked verifies headers whose proofs were written back to back into
// buf, in the same order. It returns the total number of bytes consumed.
func VerifyPacked(ep ethash.EpochParams, headers []Header, buf []byte, opts ...OptionFunc) (int, error) {
	options, err := applyOpts(opts...)
	if err != nil {
		return 0, err
	}

	offset := 0
	for i, h := range headers {
		n, err := verifyHeader(ep, h, buf[offset:], options.logger)
		if err != nil {
			return 0, fmt.Errorf("header %d: %w", i, err)
		}
		offset += int(n)
	}
	return offset, nil
}
