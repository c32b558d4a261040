// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/ledger/business/sys/validate"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/nameservice"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	State   *state.State
	Wallets *wallet.Store
	NS      *nameservice.NameService
	WS      websocket.Upgrader
	Evts    *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Status returns the head of the chain and the constants it runs with.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	length, err := h.State.Length()
	if err != nil {
		return err
	}

	gen := h.State.Genesis()
	st := status{
		Apex:         h.State.Apex(),
		Genesis:      h.State.GenesisHash(),
		Length:       length,
		Difficulty:   h.State.Difficulty(),
		MiningReward: gen.MiningReward,
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Balance returns the balance and unspent outputs of an address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addr := web.Param(r, "address")

	pkh, err := h.State.Params().Decode(addr)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	utxos, err := h.State.UnspentOutputs(pkh)
	if err != nil {
		return err
	}

	bal := balance{
		Address: addr,
		Name:    h.NS.Lookup(addr),
		UTXOs:   make([]utxo, len(utxos)),
	}
	for i, u := range utxos {
		bal.Balance += u.Output.Value
		bal.UTXOs[i] = utxo{TxID: u.TxID, Index: u.Index, Value: u.Output.Value}
	}

	return web.Respond(ctx, w, bal, http.StatusOK)
}

// ListWallets returns the addresses of the wallets held by the node.
func (h Handlers) ListWallets(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	addrs, err := h.Wallets.Addresses()
	if err != nil {
		return err
	}

	list := make([]walletInfo, len(addrs))
	for i, addr := range addrs {
		list[i] = walletInfo{Address: addr, Name: h.NS.Lookup(addr)}
	}

	return web.Respond(ctx, w, list, http.StatusOK)
}

// CreateWallet generates a new wallet held by the node.
func (h Handlers) CreateWallet(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	addr, err := h.Wallets.Create()
	if err != nil {
		return err
	}

	h.Log.Infow("create wallet", "traceid", v.TraceID, "address", addr)

	return web.Respond(ctx, w, walletInfo{Address: addr, Name: h.NS.Lookup(addr)}, http.StatusCreated)
}

// Send pays value from a wallet held by the node and mines the payment
// into a new block.
func (h Handlers) Send(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req sendRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	h.Log.Infow("send", "traceid", v.TraceID, "from", req.From, "to", req.To, "value", req.Value)

	block, err := h.State.Send(ctx, req.From, req.To, req.Value, h.Wallets)
	if err != nil {
		return errs.FromLedger(fmt.Errorf("send: %w", err))
	}

	return web.Respond(ctx, w, toBlock(block, h.State.Params(), h.NS), http.StatusOK)
}

// Transaction returns the transaction with the specified id.
func (h Handlers) Transaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	id, err := digest.FromHexDigest(web.Param(r, "id"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx, err := h.State.FindTransaction(id)
	if err != nil {
		return errs.FromLedger(err)
	}

	return web.Respond(ctx, w, toTx(tx, h.State.Params(), h.NS), http.StatusOK)
}

// Blocks returns every block from the apex back to genesis.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks, err := h.State.Blocks()
	if err != nil {
		return err
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = toBlock(blk, h.State.Params(), h.NS)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}
