package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carbonex/carbon_settlement_app/internal/apperrors"
	"github.com/carbonex/carbon_settlement_app/internal/core/domain"
	portsrepo "github.com/carbonex/carbon_settlement_app/internal/core/ports/repositories"
	portssvc "github.com/carbonex/carbon_settlement_app/internal/core/ports/services"
	"github.com/carbonex/carbon_settlement_app/internal/middleware"
	"github.com/carbonex/carbon_settlement_app/internal/platform/config"
	"github.com/carbonex/carbon_settlement_app/internal/utils/paygate"
)

// Wire parameter names of the gateway redirect/callback protocol.
const (
	ParamVersion           = "version"
	ParamCommand           = "command"
	ParamMerchantCode      = "merchantCode"
	ParamAmount            = "amount"
	ParamCurrency          = "currency"
	ParamTxnRef            = "txnRef"
	ParamOrderInfo         = "orderInfo"
	ParamOrderType         = "orderType"
	ParamLocale            = "locale"
	ParamReturnURL         = "returnUrl"
	ParamClientIP          = "clientIp"
	ParamCreateDate        = "createDate"
	ParamExpireDate        = "expireDate"
	ParamResponseCode      = "responseCode"
	ParamTransactionStatus = "transactionStatus"
)

// gatewayTimeLayout is the fixed yyyyMMddHHmmss wire format.
const gatewayTimeLayout = "20060102150405"

// gatewaySuccessCode marks a successful payment in both responseCode
// and transactionStatus.
const gatewaySuccessCode = "00"

// redirectValidity is how long the signed redirect stays payable.
const redirectValidity = 3 * time.Minute

// gatewayZone is the gateway's fixed timezone (GMT+7) for createDate
// and expireDate, independent of server locale.
var gatewayZone = time.FixedZone("GMT+7", 7*60*60)

// minorUnitFactor scales amounts to the gateway's minor units.
var minorUnitFactor = decimal.NewFromInt(100)

// paymentService builds outbound signed payment requests and reconciles
// inbound callbacks against the wallet ledger exactly once. The
// external reference is the linchpin: each one is consumed at most once
// regardless of how many times the gateway (or the return-URL path)
// redelivers the callback.
type paymentService struct {
	cfg         config.GatewayConfig
	walletRepo  portsrepo.WalletRepositoryFacade
	paymentRepo portsrepo.PaymentRepositoryFacade
	newTxnRef   func() string
	now         func() time.Time
}

// NewPaymentService creates the payment gateway reconciler.
func NewPaymentService(cfg config.GatewayConfig, walletRepo portsrepo.WalletRepositoryFacade, paymentRepo portsrepo.PaymentRepositoryFacade) portssvc.PaymentSvcFacade {
	return &paymentService{
		cfg:         cfg,
		walletRepo:  walletRepo,
		paymentRepo: paymentRepo,
		newTxnRef: func() string {
			return fmt.Sprintf("TXN%d", time.Now().UnixMilli())
		},
		now: time.Now,
	}
}

var _ portssvc.PaymentSvcFacade = (*paymentService)(nil)

// CreateTopup registers a PENDING TOPUP entry under a fresh unique
// reference and builds the signed redirect URL. Amounts travel in minor
// units (×100).
func (s *paymentService) CreateTopup(ctx context.Context, req portssvc.TopupRequest) (*portssvc.TopupRedirect, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, req.Amount.String())
	}
	if req.Amount.LessThan(s.cfg.MinTopupAmount) {
		return nil, fmt.Errorf("%w: minimum topup amount is %s", apperrors.ErrValidation, s.cfg.MinTopupAmount.String())
	}

	wallet, err := s.walletRepo.FindWalletByOwnerID(ctx, req.OwnerID)
	if err != nil {
		return nil, err
	}

	txnRef := s.newTxnRef()
	entry := domain.LedgerEntry{
		EntryID:     uuid.NewString(),
		WalletID:    wallet.WalletID,
		Type:        domain.EntryTopup,
		Status:      domain.EntryPending,
		Amount:      req.Amount,
		ExternalRef: &txnRef,
		Description: "Wallet topup via payment gateway",
		CreatedAt:   s.now().UTC(),
	}
	if err := s.paymentRepo.SavePendingTopup(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to register pending topup: %w", err)
	}

	createAt := s.now().In(gatewayZone)
	params := map[string]string{
		ParamVersion:      s.cfg.Version,
		ParamCommand:      s.cfg.Command,
		ParamMerchantCode: s.cfg.MerchantCode,
		ParamAmount:       req.Amount.Mul(minorUnitFactor).String(),
		ParamCurrency:     s.cfg.Currency,
		ParamTxnRef:       txnRef,
		ParamOrderInfo:    "Wallet topup - account " + req.OwnerID,
		ParamOrderType:    "other",
		ParamLocale:       s.cfg.Locale,
		ParamReturnURL:    s.cfg.ReturnURL,
		ParamClientIP:     req.ClientIP,
		ParamCreateDate:   createAt.Format(gatewayTimeLayout),
		ParamExpireDate:   createAt.Add(redirectValidity).Format(gatewayTimeLayout),
	}

	paymentURL := s.cfg.PayURL + "?" + paygate.SignedQuery(s.cfg.HashSecret, params)

	logger.Info("Topup payment request created",
		slog.String("owner_id", req.OwnerID),
		slog.String("txn_ref", txnRef),
		slog.String("amount", req.Amount.String()),
	)
	return &portssvc.TopupRedirect{PaymentURL: paymentURL, TxnRef: txnRef}, nil
}

// VerifyCallback checks the payload signature. It never errors; a bad
// or missing signature is simply false.
func (s *paymentService) VerifyCallback(params map[string]string) bool {
	return paygate.Verify(s.cfg.HashSecret, params)
}

// ProcessCallback applies one verified callback to the ledger. Both the
// asynchronous notification and the browser return path land here; only
// the first application of a reference may mutate the balance.
func (s *paymentService) ProcessCallback(ctx context.Context, params map[string]string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	txnRef := params[ParamTxnRef]
	if txnRef == "" {
		return fmt.Errorf("%w: callback without %s", apperrors.ErrTransactionNotFound, ParamTxnRef)
	}

	entry, err := s.paymentRepo.FindEntryByExternalRef(ctx, txnRef)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: reference %s", apperrors.ErrTransactionNotFound, txnRef)
		}
		return err
	}

	// Already consumed: replays and the second delivery path are
	// observably safe no-ops.
	if entry.Status != domain.EntryPending {
		logger.Warn("Callback for already-processed transaction",
			slog.String("txn_ref", txnRef),
			slog.String("status", string(entry.Status)),
		)
		return nil
	}

	if rawAmount := params[ParamAmount]; rawAmount != "" {
		received, parseErr := decimal.NewFromString(rawAmount)
		expected := entry.Amount.Mul(minorUnitFactor)
		if parseErr != nil || !expected.Equal(received) {
			reason := fmt.Sprintf("amount mismatch: expected %s, received %s", expected.String(), rawAmount)
			if _, failErr := s.paymentRepo.FailTopup(ctx, txnRef, reason); failErr != nil {
				return failErr
			}
			logger.Error("Callback amount mismatch", slog.String("txn_ref", txnRef), slog.String("received", rawAmount))
			return fmt.Errorf("%w: reference %s", apperrors.ErrAmountMismatch, txnRef)
		}
	}

	success := params[ParamResponseCode] == gatewaySuccessCode && params[ParamTransactionStatus] == gatewaySuccessCode
	if !success {
		code := params[ParamResponseCode]
		if code == "" {
			code = params[ParamTransactionStatus]
		}
		if _, failErr := s.paymentRepo.FailTopup(ctx, txnRef, "payment failed (code: "+code+")"); failErr != nil {
			return failErr
		}
		logger.Warn("Gateway reported payment failure",
			slog.String("txn_ref", txnRef),
			slog.String("response_code", params[ParamResponseCode]),
			slog.String("transaction_status", params[ParamTransactionStatus]),
		)
		return nil
	}

	applied, err := s.paymentRepo.ConfirmTopup(ctx, txnRef, "payment confirmed by gateway")
	if err != nil {
		return err
	}
	if !applied {
		// A concurrent delivery won the settlement race.
		logger.Warn("Topup already settled concurrently", slog.String("txn_ref", txnRef))
		return nil
	}

	logger.Info("Topup settled",
		slog.String("txn_ref", txnRef),
		slog.String("amount", entry.Amount.String()),
	)
	return nil
}

// GetTopup looks up the ledger entry for an external reference.
func (s *paymentService) GetTopup(ctx context.Context, txnRef string) (*domain.LedgerEntry, error) {
	entry, err := s.paymentRepo.FindEntryByExternalRef(ctx, txnRef)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: reference %s", apperrors.ErrTransactionNotFound, txnRef)
		}
		return nil, err
	}
	return entry, nil
}
