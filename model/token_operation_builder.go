package model

import "lukechampine.com/uint128"

// TokenOperationBuilder constructs a TokenOperation from its required fields,
// leaving every optional field absent unless set.
//
//	op := NewTokenOperationBuilder(OpDeploy, "KASP").
//		Max(uint128.From64(21_000_000)).
//		Limit(uint128.From64(1_000)).
//		Build()
type TokenOperationBuilder struct {
	op TokenOperation
}

func NewTokenOperationBuilder(op Op, tick string) *TokenOperationBuilder {
	return &TokenOperationBuilder{op: TokenOperation{Op: op, Tick: tick}}
}

func (b *TokenOperationBuilder) Max(max uint128.Uint128) *TokenOperationBuilder {
	b.op.Max = &max
	return b
}

func (b *TokenOperationBuilder) Limit(limit uint128.Uint128) *TokenOperationBuilder {
	b.op.Limit = &limit
	return b
}

func (b *TokenOperationBuilder) Dec(dec uint128.Uint128) *TokenOperationBuilder {
	b.op.Dec = &dec
	return b
}

func (b *TokenOperationBuilder) Amount(amount uint128.Uint128) *TokenOperationBuilder {
	b.op.Amount = &amount
	return b
}

func (b *TokenOperationBuilder) Pre(pre uint128.Uint128) *TokenOperationBuilder {
	b.op.Pre = &pre
	return b
}

func (b *TokenOperationBuilder) From(from string) *TokenOperationBuilder {
	b.op.From = &from
	return b
}

func (b *TokenOperationBuilder) To(to string) *TokenOperationBuilder {
	b.op.To = &to
	return b
}

func (b *TokenOperationBuilder) OpScore(score uint64) *TokenOperationBuilder {
	b.op.OpScore = &score
	return b
}

func (b *TokenOperationBuilder) HashRev(hash string) *TokenOperationBuilder {
	b.op.HashRev = &hash
	return b
}

func (b *TokenOperationBuilder) FeeRev(fee string) *TokenOperationBuilder {
	b.op.FeeRev = &fee
	return b
}

func (b *TokenOperationBuilder) TxAccept(accept string) *TokenOperationBuilder {
	b.op.TxAccept = &accept
	return b
}

func (b *TokenOperationBuilder) OpAccept(accept string) *TokenOperationBuilder {
	b.op.OpAccept = &accept
	return b
}

func (b *TokenOperationBuilder) OpError(opError string) *TokenOperationBuilder {
	b.op.OpError = &opError
	return b
}

func (b *TokenOperationBuilder) MtsAdd(mts string) *TokenOperationBuilder {
	b.op.MtsAdd = &mts
	return b
}

func (b *TokenOperationBuilder) MtsMod(mts string) *TokenOperationBuilder {
	b.op.MtsMod = &mts
	return b
}

// Build returns the operation. The builder must not be reused afterwards.
func (b *TokenOperationBuilder) Build() TokenOperation {
	return b.op
}
