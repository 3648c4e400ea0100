package ethrpc

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/trebuchet-org/treb-upgrades/internal/domain"
)

// transientMessages are node error fragments that resolve by resubmitting
var transientMessages = []string{
	"nonce too low",
	"replacement transaction underpriced",
	"could not decode",
	"header not found",
	"connection reset",
	"connection refused",
	"too many requests",
	"timeout",
	"EOF",
}

// classify marks retryable RPC failures as transient. Reverts and every
// other error are returned unchanged.
func classify(method string, err error) error {
	if err == nil || domain.IsTransient(err) {
		return err
	}
	if isTransient(err) {
		return &domain.TransientRPCError{Method: method, Err: err}
	}
	return err
}

func isAlreadyKnown(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "already known")
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// revertData extracts the revert payload from a call error
func revertData(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	switch data := dataErr.ErrorData().(type) {
	case string:
		b, decodeErr := hexutil.Decode(data)
		return b, decodeErr == nil
	case []byte:
		return data, true
	}
	return nil, false
}
