package domain

// AccountRecord is the serialized form of one account in the metadata
// snapshot.
type AccountRecord struct {
	Label    string `json:"label"`
	Archived bool   `json:"archived"`
	Correct  bool   `json:"correct"`
	Addr     string `json:"addr"`
	Xpub     string `json:"xpub"`
	Xpriv    string `json:"xpriv"`
}

// Snapshot is the wallet state exchanged with the metadata store. The field
// order is fixed so re-serializing an unchanged wallet is byte-identical.
type Snapshot struct {
	HasSeen           bool              `json:"has_seen"`
	DefaultAccountIdx int               `json:"default_account_idx"`
	Accounts          []AccountRecord   `json:"accounts"`
	LegacyAccount     *AccountRecord    `json:"legacy_account"`
	TxNotes           map[string]string `json:"tx_notes"`
	LastTx            string            `json:"last_tx"`
	SeedHex           string            `json:"seed_hex"`
	Passphrase        string            `json:"passphrase"`
	DoubleEncryption  bool              `json:"double_encryption"`
}

// Snapshot serializes the persisted part of the wallet. Runtime caches like
// balances and transaction lists are rebuilt from the explorer and never
// stored.
func (w *Wallet) Snapshot() *Snapshot {
	accounts := make([]AccountRecord, 0, len(w.accounts))
	for _, a := range w.accounts {
		accounts = append(accounts, accountToRecord(a))
	}
	var legacy *AccountRecord
	if w.legacyAccount != nil {
		record := accountToRecord(*w.legacyAccount)
		legacy = &record
	}

	return &Snapshot{
		HasSeen:           w.hasSeen,
		DefaultAccountIdx: w.defaultAccountIdx,
		Accounts:          accounts,
		LegacyAccount:     legacy,
		TxNotes:           w.TxNotes(),
		LastTx:            w.lastTx,
		SeedHex:           w.seedHex,
		Passphrase:        w.passphrase,
		DoubleEncryption:  w.doubleEncrypted,
	}
}

// WalletFromSnapshot rebuilds a wallet from a metadata snapshot, rejecting
// malformed records instead of constructing a partially-valid wallet. A nil
// snapshot yields the empty default wallet.
func WalletFromSnapshot(snapshot *Snapshot) (*Wallet, error) {
	w := newEmptyWallet()
	if snapshot == nil {
		return w, nil
	}

	if err := snapshot.validate(); err != nil {
		return nil, err
	}

	for _, record := range snapshot.Accounts {
		w.accounts = append(w.accounts, recordToAccount(record))
	}
	if snapshot.LegacyAccount != nil {
		legacy := recordToAccount(*snapshot.LegacyAccount)
		w.legacyAccount = &legacy
	}
	w.hasSeen = snapshot.HasSeen
	w.defaultAccountIdx = snapshot.DefaultAccountIdx
	for hash, note := range snapshot.TxNotes {
		w.txNotes[hash] = note
	}
	w.lastTx = snapshot.LastTx
	w.seedHex = snapshot.SeedHex
	w.passphrase = snapshot.Passphrase
	w.doubleEncrypted = snapshot.DoubleEncryption
	return w, nil
}

func (s *Snapshot) validate() error {
	if s.DefaultAccountIdx < 0 {
		return ErrInvalidSnapshot
	}
	if len(s.Accounts) > 0 {
		if s.DefaultAccountIdx >= len(s.Accounts) {
			return ErrInvalidSnapshot
		}
	} else if s.DefaultAccountIdx != 0 {
		return ErrInvalidSnapshot
	}
	for _, record := range s.Accounts {
		if err := record.validate(); err != nil {
			return err
		}
	}
	if s.LegacyAccount != nil {
		if err := s.LegacyAccount.validate(); err != nil {
			return err
		}
	}
	if len(s.Accounts) > 0 || s.LegacyAccount != nil {
		if len(s.SeedHex) <= 0 {
			return ErrInvalidSnapshot
		}
	}
	return nil
}

func (r AccountRecord) validate() error {
	if len(r.Addr) <= 0 || len(r.Xpub) <= 0 {
		return ErrInvalidSnapshot
	}
	return nil
}

func accountToRecord(a Account) AccountRecord {
	return AccountRecord{
		Label:    a.label,
		Archived: a.archived,
		Correct:  a.correct,
		Addr:     a.addr,
		Xpub:     a.xpub,
		Xpriv:    a.xpriv,
	}
}

func recordToAccount(r AccountRecord) Account {
	return Account{
		label:    r.Label,
		archived: r.Archived,
		correct:  r.Correct,
		addr:     r.Addr,
		xpub:     r.Xpub,
		xpriv:    r.Xpriv,
	}
}
