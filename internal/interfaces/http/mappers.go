package http

import (
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func toMovementDTOs(list []*entity.Movement) []dto.MovementDTO {
	out := make([]dto.MovementDTO, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementDTO{
			ID:                 m.ID,
			Seq:                m.Seq,
			Type:               string(m.Type),
			WarehouseID:        m.WarehouseID,
			ProductID:          m.ProductID,
			Quantity:           m.Quantity,
			Folio:              m.Folio,
			SourceLocationID:   m.SourceLocationID,
			Authorizer:         m.Authorizer,
			OriginProject:      m.OriginProject,
			DestinationProject: m.DestinationProject,
			DispatchMode:       string(m.DispatchMode),
			UnitCost:           m.UnitCost,
			TotalCost:          m.TotalCost,
			CreatedAt:          m.CreatedAt,
			CreatedBy:          m.CreatedBy,
		})
	}
	return out
}

func toDistribution(lines []dto.DistributionLineRequest) []entity.DistributionLine {
	out := make([]entity.DistributionLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.DistributionLine{LocationID: l.LocationID, Quantity: l.Quantity})
	}
	return out
}

func toTransferResponse(res *inventory.TransferResult) dto.TransferResponse {
	t := res.Transfer
	return dto.TransferResponse{
		ID:                     t.ID,
		Folio:                  t.Folio,
		OriginWarehouseID:      t.OriginWarehouseID,
		DestinationWarehouseID: t.DestinationWarehouseID,
		OriginProject:          t.OriginProject,
		DestinationProject:     t.DestinationProject,
		Authorizer:             t.Authorizer,
		CreatedAt:              t.CreatedAt,
		Movements:              toMovementDTOs(res.Movements),
	}
}

func toDispatchResponse(doc *entity.DispatchDocument, movements []*entity.Movement, proof *entity.DispatchProof) dto.DispatchResponse {
	out := dto.DispatchResponse{
		ID:              doc.ID,
		Folio:           doc.Folio,
		WarehouseID:     doc.WarehouseID,
		Mode:            string(doc.Mode),
		ProjectID:       doc.ProjectID,
		SubcontractorID: doc.SubcontractorID,
		ExternalCompany: doc.ExternalCompany,
		Reason:          doc.Reason,
		Receiver:        dto.ReceiverDTO{Name: doc.Receiver.Name, IDNumber: doc.Receiver.IDNumber, Stage: doc.Receiver.Stage},
		CreatedAt:       doc.CreatedAt,
		Movements:       toMovementDTOs(movements),
	}
	if proof != nil {
		out.Proof = &dto.DispatchProofDTO{ObjectURL: proof.ObjectURL, UploadedAt: proof.UploadedAt, UploadedBy: proof.UploadedBy}
	}
	return out
}
