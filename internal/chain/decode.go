package chain

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// revertReason decodes revert data carried by an RPC error. It tries the
// standard Error(string) encoding first, then the custom error definitions of
// every registered contract ABI. An empty string means the data could not be
// decoded; callers fall back to the raw error.
func (c *Client) revertReason(err error) string {
	data := revertData(err)
	if len(data) < 4 {
		return ""
	}
	if reason, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
		return reason
	}
	for _, contractABI := range []abi.ABI{c.strategyManagerABI, c.delegationManagerABI, c.erc20ABI, c.strategyABI} {
		for name, def := range contractABI.Errors {
			if !bytes.Equal(def.ID.Bytes()[:4], data[:4]) {
				continue
			}
			args, unpackErr := def.Unpack(data)
			if unpackErr != nil {
				return name
			}
			return fmt.Sprintf("%s%v", name, args)
		}
	}
	return ""
}

func revertData(err error) []byte {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil
	}
	encoded, ok := dataErr.ErrorData().(string)
	if !ok {
		return nil
	}
	data, decodeErr := hexutil.Decode(encoded)
	if decodeErr != nil {
		return nil
	}
	return data
}
