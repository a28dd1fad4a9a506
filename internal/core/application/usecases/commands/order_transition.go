package commands

import (
	"context"

	"souvlaki/internal/core/domain/model/kernel"
	"souvlaki/internal/core/domain/model/order"
	"souvlaki/internal/core/ports"
)

// transitionOrder loads the order, applies mutate and persists the result in one transaction.
// mutate reports whether the order changed; unchanged orders are returned without a write.
func transitionOrder(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	orderID kernel.ID,
	mutate func(o *order.Order) (bool, error),
) (*order.Order, error) {
	return transition(ctx, uowFactory, orderID, ports.OrderRepository.Get, mutate)
}

// transitionLockedOrder is transitionOrder with the row locked from the read onwards.
// Use it when mutate has effects outside the database that a lost race cannot undo.
func transitionLockedOrder(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	orderID kernel.ID,
	mutate func(o *order.Order) (bool, error),
) (*order.Order, error) {
	return transition(ctx, uowFactory, orderID, ports.OrderRepository.GetForUpdate, mutate)
}

func transition(
	ctx context.Context,
	uowFactory OrderUoWFactory,
	orderID kernel.ID,
	load func(repo ports.OrderRepository, ctx context.Context, id kernel.ID) (*order.Order, error),
	mutate func(o *order.Order) (bool, error),
) (*order.Order, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()

	aggregate, err := load(repo, ctx, orderID)
	if err != nil {
		return nil, err
	}

	changed, err := mutate(aggregate)
	if err != nil {
		return nil, err
	}
	if !changed {
		return aggregate, nil
	}

	if err = repo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return aggregate, nil
}
