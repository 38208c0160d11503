package blockchain

import (
	"context"
	"fmt"
	"time"

	"github.com/algorand/go-algorand-sdk/v2/client/v2/algod"
	"github.com/algorand/go-algorand-sdk/v2/encoding/msgpack"
	"github.com/algorand/go-algorand-sdk/v2/transaction"
	"github.com/algorand/go-algorand-sdk/v2/types"
)

const (
	// RequestTimeout bounds individual node calls
	RequestTimeout = 10 * time.Second
)

// Node is the subset of the Algorand node API the payment flow depends on
type Node interface {
	SuggestedParams(ctx context.Context) (types.SuggestedParams, error)
	SendRawTransaction(ctx context.Context, signedTxn []byte) (string, error)
	WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (uint64, error)
}

// Algod talks to an Algorand node over its REST API
type Algod struct {
	apiURL string
	client *algod.Client
}

// NewAlgod creates a new Algod instance
func NewAlgod(apiURL, apiToken string) (*Algod, error) {
	client, err := algod.MakeClient(apiURL, apiToken)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the algod node: %w", err)
	}
	return &Algod{apiURL: apiURL, client: client}, nil
}

// SuggestedParams fetches the network parameters for a new transaction
func (a *Algod) SuggestedParams(ctx context.Context) (types.SuggestedParams, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	params, err := a.client.SuggestedParams().Do(ctx)
	if err != nil {
		return types.SuggestedParams{}, fmt.Errorf("failed to get suggested params: %w", err)
	}
	return params, nil
}

// SendRawTransaction submits a signed transaction and returns its ID
func (a *Algod) SendRawTransaction(ctx context.Context, signedTxn []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	txID, err := a.client.SendRawTransaction(signedTxn).Do(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return txID, nil
}

// WaitForConfirmation blocks until the transaction is confirmed or the
// bounded number of rounds has passed. Returns the confirmed round.
func (a *Algod) WaitForConfirmation(ctx context.Context, txID string, waitRounds uint64) (uint64, error) {
	info, err := transaction.WaitForConfirmation(a.client, txID, waitRounds, ctx)
	if err != nil {
		return 0, fmt.Errorf("transaction not confirmed within %d rounds: %w", waitRounds, err)
	}
	return info.ConfirmedRound, nil
}

// BuildPaymentTxn constructs an unsigned payment transaction and returns
// its canonical msgpack encoding, ready for a wallet to sign
func BuildPaymentTxn(from, to string, microAlgos uint64, note []byte, params types.SuggestedParams) ([]byte, error) {
	txn, err := transaction.MakePaymentTxn(from, to, microAlgos, note, "", params)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment transaction: %w", err)
	}
	return msgpack.Encode(&txn), nil
}

// VerifyPaymentTxn decodes a signed transaction and checks that it is a
// payment of exactly microAlgos from the expected sender to the expected
// receiver. Cryptographic signature validity is the node's job; this guards
// against submitting bytes that pay the wrong party or the wrong amount.
func VerifyPaymentTxn(signedTxn []byte, from, to string, microAlgos uint64) error {
	var stx types.SignedTxn
	if err := msgpack.Decode(signedTxn, &stx); err != nil {
		return fmt.Errorf("failed to decode signed transaction: %w", err)
	}

	sender, err := types.DecodeAddress(from)
	if err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	receiver, err := types.DecodeAddress(to)
	if err != nil {
		return fmt.Errorf("invalid receiver address: %w", err)
	}

	if stx.Txn.Type != types.PaymentTx {
		return fmt.Errorf("transaction is not a payment, got type %q", stx.Txn.Type)
	}
	if stx.Txn.Sender != sender {
		return fmt.Errorf("payment sender %s does not match the connected account", stx.Txn.Sender)
	}
	if stx.Txn.Receiver != receiver {
		return fmt.Errorf("payment receiver %s is not the merchant account", stx.Txn.Receiver)
	}
	if uint64(stx.Txn.Amount) != microAlgos {
		return fmt.Errorf("payment amount %d does not match the expected %d microAlgos", stx.Txn.Amount, microAlgos)
	}
	return nil
}
