package fulfillmentlocation

import (
	"fmt"
	"strings"
)

const bearerPrefix = "Bearer "

func validateAuthorization(authorization string) error {
	if authorization == "" {
		return newInvalidInputError(ErrMissingAuthorization, "Missing Authorization parameter")
	}

	if !strings.HasPrefix(authorization, bearerPrefix) {
		return newInvalidInputError(ErrMalformedAuthorization, fmt.Sprintf(
			`Invalid format for Authorization parameter: "%s". Authorization parameter should be in the following format: "Bearer [token]"`,
			authorization,
		))
	}

	return nil
}
