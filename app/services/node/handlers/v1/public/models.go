package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/address"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/digest"
	"github.com/ardanlabs/ledger/foundation/nameservice"
)

type status struct {
	Apex         digest.Hash `json:"apex"`
	Genesis      digest.Hash `json:"genesis"`
	Length       uint64      `json:"length"`
	Difficulty   uint        `json:"difficulty"`
	MiningReward uint64      `json:"mining_reward"`
}

type utxo struct {
	TxID  digest.Hash `json:"tx_id"`
	Index uint64      `json:"index"`
	Value uint64      `json:"value"`
}

type balance struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Balance uint64 `json:"balance"`
	UTXOs   []utxo `json:"utxos"`
}

type walletInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

type sendRequest struct {
	From  string `json:"from" validate:"required"`
	To    string `json:"to" validate:"required"`
	Value uint64 `json:"value" validate:"gt=0"`
}

type input struct {
	PrevTxID    digest.Hash `json:"prev_tx_id"`
	OutputIndex uint64      `json:"output_index"`
	From        string      `json:"from,omitempty"`
	FromName    string      `json:"from_name,omitempty"`
	Memo        string      `json:"memo,omitempty"`
}

type output struct {
	Value  uint64 `json:"value"`
	To     string `json:"to"`
	ToName string `json:"to_name"`
}

type tx struct {
	ID       digest.Hash `json:"id"`
	Coinbase bool        `json:"coinbase"`
	Inputs   []input     `json:"inputs"`
	Outputs  []output    `json:"outputs"`
}

type block struct {
	Hash      digest.Hash `json:"hash"`
	PrevHash  digest.Hash `json:"prev_hash"`
	TimeStamp uint64      `json:"timestamp"`
	Nonce     uint64      `json:"nonce"`
	Trans     []tx        `json:"trans"`
}

func toTx(dbTx database.Tx, params address.Params, ns *nameservice.NameService) tx {
	t := tx{
		ID:       dbTx.ID,
		Coinbase: dbTx.IsCoinbase(),
		Inputs:   make([]input, len(dbTx.Inputs)),
		Outputs:  make([]output, len(dbTx.Outputs)),
	}

	for i, in := range dbTx.Inputs {
		t.Inputs[i] = input{
			PrevTxID:    in.PrevTxID,
			OutputIndex: in.OutputIndex,
		}

		if t.Coinbase {
			t.Inputs[i].Memo = string(in.UnlockKey)
			continue
		}

		from := params.FromPublicKey(in.UnlockKey)
		t.Inputs[i].From = from
		t.Inputs[i].FromName = ns.Lookup(from)
	}

	for i, out := range dbTx.Outputs {
		to := params.Encode(out.Lock)
		t.Outputs[i] = output{
			Value:  out.Value,
			To:     to,
			ToName: ns.Lookup(to),
		}
	}

	return t
}

func toBlock(blk database.Block, params address.Params, ns *nameservice.NameService) block {
	b := block{
		Hash:      blk.Hash,
		PrevHash:  blk.PrevHash,
		TimeStamp: blk.TimeStamp,
		Nonce:     blk.Nonce,
		Trans:     make([]tx, len(blk.Trans)),
	}

	for i, dbTx := range blk.Trans {
		b.Trans[i] = toTx(dbTx, params, ns)
	}

	return b
}
