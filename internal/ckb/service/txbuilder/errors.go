package txbuilder

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nervosnetwork/mercury-sub000/internal/ckb/dao"
	"github.com/nervosnetwork/mercury-sub000/internal/ckb/model"
	"github.com/nervosnetwork/mercury-sub000/pkg/safe"
)

// Kind classifies build failures for callers.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindInsufficient
	KindMissingDependency
	KindArithmetic
	KindAdapter
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInsufficient:
		return "insufficient"
	case KindMissingDependency:
		return "missing_dependency"
	case KindArithmetic:
		return "arithmetic"
	case KindAdapter:
		return "adapter"
	default:
		return "unknown"
	}
}

// Error is a coded build failure. Errors compare equal by code, so a sentinel
// wrapped with details still matches errors.Is.
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// with wraps the sentinel with formatted detail.
func (e *Error) with(format string, args ...any) error {
	return fmt.Errorf("%w: %s", e, fmt.Sprintf(format, args...))
}

func newError(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	ErrNeedAtLeastOneFrom          = newError(KindValidation, -10070, "need at least one from item")
	ErrNeedAtLeastOneTo            = newError(KindValidation, -10120, "need at least one to item")
	ErrNeedAtLeastOneFromAndOneTo  = newError(KindValidation, -10050, "need at least one from and one to item")
	ErrExceedMaxItemNum            = newError(KindValidation, -11017, "exceed max item number")
	ErrTransferAmountMustPositive  = newError(KindValidation, -10053, "transfer amount must be positive")
	ErrFromContainTo               = newError(KindValidation, -10055, "from items contain to address")
	ErrRequiredCKBLessThanMin      = newError(KindValidation, -10051, "required capacity is less than the minimum")
	ErrInvalidDAOCapacity          = newError(KindValidation, -10071, "dao deposit capacity is less than the minimum")
	ErrItemsNotSameEnumValue       = newError(KindValidation, -11023, "items are not the same variant")
	ErrInvalidRPCParams            = newError(KindValidation, -11002, "invalid params")
	ErrFromNotContainOwner         = newError(KindValidation, -10130, "from items do not contain the owner")
	ErrAdjustAccountWithoutUDTInfo = newError(KindValidation, -10040, "adjust account requires a udt asset")
	ErrInvalidAdjustAccountNumber  = newError(KindValidation, -10041, "invalid adjust account number")
	ErrNotZeroInputUDTAmount       = newError(KindValidation, -10042, "input udt amount is not zero")
	ErrUnsupportedLockScript       = newError(KindValidation, -11007, "unsupported lock script")

	ErrMissingScriptInfo                 = newError(KindMissingDependency, -11020, "missing script info")
	ErrCannotFindChangeCell              = newError(KindMissingDependency, -11013, "cannot find change cell")
	ErrCannotFindDepositCell             = newError(KindMissingDependency, -11072, "cannot find deposit cell")
	ErrCannotFindUnlockedWithdrawingCell = newError(KindMissingDependency, -10110, "cannot find unlocked withdrawing cell")
	ErrCannotFindACPCell                 = newError(KindMissingDependency, -10052, "cannot find acp cell")
	ErrInvalidFeeChange                  = newError(KindMissingDependency, -10054, "invalid fee change output")
	ErrCannotGetScriptByHash             = newError(KindMissingDependency, -11004, "cannot get script by hash")

	ErrOverflow = newError(KindArithmetic, -11019, "capacity overflow")
)

const (
	codeCKBNotEnough = -11029
	codeUDTNotEnough = -11030
)

// InsufficientError reports the shortfall left after every candidate of every item was consumed.
type InsufficientError struct {
	Asset     model.AssetInfo
	Shortfall *big.Int
	Items     []model.Item
}

func (e *InsufficientError) Error() string {
	items := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		items = append(items, item.String())
	}
	asset := "ckb"
	if !e.Asset.IsCKB() {
		asset = "udt " + e.Asset.UDTHash.String()
	}
	return fmt.Sprintf("%s is not enough, shortfall %s, items [%s]", asset, e.Shortfall, strings.Join(items, ", "))
}

// Code mirrors the coded errors so transports can report one number for any failure.
func (e *InsufficientError) Code() int {
	if e.Asset.IsCKB() {
		return codeCKBNotEnough
	}
	return codeUDTNotEnough
}

// StoreError wraps a record store failure with the operation that issued it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("record store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// KindOf classifies err. Unrecognized errors are KindUnknown.
func KindOf(err error) Kind {
	var (
		coded        *Error
		insufficient *InsufficientError
		store        *StoreError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &insufficient):
		return KindInsufficient
	case errors.As(err, &coded):
		return coded.Kind
	case errors.As(err, &store):
		return KindAdapter
	case errors.Is(err, dao.ErrOverflow), errors.Is(err, dao.ErrHeaderOrder), errors.Is(err, safe.ErrOutOfRange):
		return KindArithmetic
	case errors.Is(err, model.ErrInvalidSince):
		return KindValidation
	default:
		return KindUnknown
	}
}

// CodeOf returns the numeric code of err, or 0 when it carries none.
func CodeOf(err error) int {
	var (
		coded        *Error
		insufficient *InsufficientError
	)
	switch {
	case errors.As(err, &insufficient):
		return insufficient.Code()
	case errors.As(err, &coded):
		return coded.Code
	case KindOf(err) == KindArithmetic:
		return ErrOverflow.Code
	default:
		return 0
	}
}
