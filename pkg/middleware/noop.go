package middleware

import (
	"context"

	"paperbroker/pkg/common"
)

//goland:noinspection ALL
var (
	NoopBarHdl       = func(context.Context, common.Bar) {}
	NoopOrderHdl     = func(context.Context, common.Order) {}
	NoopOrderAccHdl  = func(context.Context, common.OrderAccepted) {}
	NoopOrderRjctHdl = func(context.Context, common.OrderRejected) {}
	NoopOrderCnclHdl = func(context.Context, common.OrderCancelled) {}
	NoopFillHdl      = func(context.Context, common.Fill) {}
	NoopPosOpnHdl    = func(context.Context, common.Position) {}
	NoopPosUpdHdl    = func(context.Context, common.Position) {}
	NoopPosClsHdl    = func(context.Context, common.Position) {}
	NoopBalanceHdl   = func(context.Context, common.Balance) {}
	NoopEquityHdl    = func(context.Context, common.Equity) {}
	NoopSnapshotHdl  = func(context.Context, common.AccountSnapshot) {}
)
