package authorizer

import dErrors "cpfgate/pkg/domain-errors"

var errMissingSigner = dErrors.New(dErrors.CodeConfiguration, "signing key not configured")
