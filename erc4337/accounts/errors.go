package accounts

import "github.com/ethaccount/aa4337/erc4337/aaerrors"

func callsEmptyErr() error {
	return aaerrors.BadInputf("encode_calls requires at least one call")
}
