package core

import (
	"kitties-ledger/core/model"
	"kitties-ledger/core/store"

	"github.com/holiman/uint256"
)

// List offers kitty id for sale at price. Listing again replaces the price;
// a zero price withdraws the listing.
func (k *Kitties) List(call model.Call, id model.KittyIndex, price *uint256.Int) error {
	err := k.update("list", call, func(tx store.Tx, undo *journal) error {
		owner, ok, err := tx.Owner(id)
		if err != nil {
			return err
		}
		if !ok || owner != call.Account {
			return model.ErrNotOwner
		}

		return tx.PutListing(id, price)
	})
	if err != nil {
		return err
	}

	k.emit(model.Listed(call.Account, id))
	return nil
}

// Purchase buys listed kitty id for the caller. The seller is paid the
// listing price and gets its reservation back; the buyer reserves nothing.
func (k *Kitties) Purchase(call model.Call, id model.KittyIndex) error {
	err := k.update("purchase", call, func(tx store.Tx, undo *journal) error {
		price, err := tx.Price(id)
		if err != nil {
			return err
		}
		if price.IsZero() {
			return model.ErrNotListed
		}

		seller, ok, err := tx.Owner(id)
		if err != nil {
			return err
		}
		if !ok {
			return model.ErrInvalidIndex
		}

		free, err := k.currency.Free(call.Account)
		if err != nil {
			return err
		}
		// the buyer must hold strictly more than the price
		if !free.Gt(price) {
			return model.ErrInsufficientFunds
		}

		if err := tx.RemoveListing(id); err != nil {
			return err
		}
		if err := tx.SetOwner(id, call.Account); err != nil {
			return err
		}

		if err := k.currency.Transfer(call.Account, seller, price, true); err != nil {
			return model.ErrInsufficientFunds
		}
		undo.add(func() { k.currency.Transfer(seller, call.Account, price, false) })
		k.unreserveFor(seller, undo)

		return nil
	})
	if err != nil {
		return err
	}

	k.emit(model.Purchased(call.Account, id))
	return nil
}

// Price returns zero when id is not listed.
func (k *Kitties) Price(id model.KittyIndex) (*uint256.Int, error) {
	var price *uint256.Int
	err := k.store.View(func(tx store.Tx) error {
		var err error
		price, err = tx.Price(id)
		return err
	})
	return price, err
}
