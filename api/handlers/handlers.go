package handlers

import (
	"github.com/feichai0017/ai-ready-data/internal/billing"
	"github.com/feichai0017/ai-ready-data/internal/service/document"
	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

type Handlers struct {
	Document *DocumentHandler
	Usage    *UsageHandler
	Admin    *AdminHandler
}

func NewHandlers(
	documentService document.DocumentProcessor,
	meter *billing.Meter,
	logger logger.Logger,
) *Handlers {
	return &Handlers{
		Document: NewDocumentHandler(documentService, logger),
		Usage:    NewUsageHandler(meter, logger),
		Admin:    NewAdminHandler(meter, logger),
	}
}
