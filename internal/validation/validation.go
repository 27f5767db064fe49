// Package validation holds the pure, side-effect-free predicates and
// struct validators the rest of swagconfd composes before any file, network,
// or template operation is attempted.
package validation

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/oakridge-labs/swagconfd/internal/core"
)

// MaxConfigBytes bounds the content ContentSafety and ConfigOperations will
// accept for a single active config file.
const MaxConfigBytes = 2 << 20 // 2 MiB

var (
	structValidatorOnce sync.Once
	structValidator     *validator.Validate
)

func structValidatorInstance() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return structValidator
}

// Struct runs go-playground/validator's struct-tag checks over req (the
// ConfigRequest/EditRequest/UpdateRequest/RemoveRequest/HealthRequest/
// LogsRequest shapes of internal/core), translating the first failure into
// a core.Error so callers see the same taxonomy as the hand-written
// predicates below.
func Struct(op string, req any) error {
	if err := structValidatorInstance().Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return core.NewField(op, strings.ToLower(fe.Field()), "failed "+fe.Tag()+" validation")
		}
		return core.Wrap(core.KindInvalidInput, op, "", err)
	}
	return nil
}

// ConfigRequest runs the create-request checks validator/v10 cannot express
// (config name grammar, domain label grammar, upstream token shape, port
// range). It does not run the struct-tag checks; callers run Struct for those.
func ConfigRequest(configName, serverName, upstreamApp string, upstreamPort int) error {
	const op = "validate_config_request"
	if configName == "" {
		return core.NewField(op, "config_name", "must not be empty")
	}
	if _, _, err := ConfigName(configName); err != nil {
		return err
	}
	if _, err := Domain(serverName); err != nil {
		return err
	}
	if _, err := UpstreamApp(upstreamApp); err != nil {
		return err
	}
	if err := Port(upstreamPort); err != nil {
		return err
	}
	return nil
}
