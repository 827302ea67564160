package draft

import (
	"errors"
	"fmt"
)

const (
	supplierActionReuse = "Pakai Yang Lama"
	supplierActionNew   = "Buat Baru"
)

// ErrNoPendingSupplier is returned when a supplier confirmation is
// applied to a draft that is not waiting for one.
var ErrNoPendingSupplier = errors.New("draft: no pending supplier confirmation")

// ApplySupplierReuse resolves a pending supplier confirmation by
// adopting the known counterparty.
func ApplySupplierReuse(current Draft) (Draft, error) {
	if current.Action != ActionSupplierConfirm || current.Supplier == nil {
		return Draft{}, ErrNoPendingSupplier
	}
	out := current.Clone()
	out.SupplierName = current.Supplier.ExistingName
	if out.SupplierPhone == "" {
		out.SupplierPhone = current.Supplier.Phone
	}
	out.Supplier = nil
	out.Action = ActionChat
	out.FollowUp = fmt.Sprintf("Oke, pakai supplier %s.", out.SupplierName)
	out.SuggestedAction = []string{saveAction, addMoreAction}
	return out, nil
}

// ApplySupplierNew resolves a pending supplier confirmation by keeping
// the freshly extracted name as a new counterparty.
func ApplySupplierNew(current Draft) (Draft, error) {
	if current.Action != ActionSupplierConfirm || current.Supplier == nil {
		return Draft{}, ErrNoPendingSupplier
	}
	out := current.Clone()
	out.SupplierName = current.Supplier.NewName
	out.Supplier = nil
	out.Action = ActionChat
	out.FollowUp = fmt.Sprintf("Siap, %s dicatat sebagai supplier baru.", out.SupplierName)
	out.SuggestedAction = []string{saveAction, addMoreAction}
	return out, nil
}
