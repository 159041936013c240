package services

import (
	"context"
	"strings"

	"portal_backend/internal/addresslookup"
	"portal_backend/internal/algorithms"
	"portal_backend/internal/logger"
	"portal_backend/internal/models"
	"portal_backend/internal/repositories"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LookupResult - адрес, найденный для конкретного сайта
type LookupResult struct {
	Site    algorithms.DesiredSite
	Address *addresslookup.Address
}

// ShippingSyncer заполняет адрес доставки из внешнего сервиса.
// Поиск идет до открытия транзакции, запись - внутри нее.
type ShippingSyncer struct {
	lookup       addresslookup.Lookup
	shippingRepo repositories.ShippingRepository
	concurrency  int
}

func NewShippingSyncer(lookup addresslookup.Lookup, shippingRepo repositories.ShippingRepository, concurrency int) *ShippingSyncer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ShippingSyncer{
		lookup:       lookup,
		shippingRepo: shippingRepo,
		concurrency:  concurrency,
	}
}

// Fetch опрашивает сервис по всем сайтам параллельно (не больше concurrency
// одновременных запросов) и возвращает первый успешный результат в порядке сайтов.
// Ошибки по отдельным сайтам логируются и пропускаются. nil - ничего не найдено.
func (s *ShippingSyncer) Fetch(ctx context.Context, sites []algorithms.DesiredSite, firstName, lastName string) *LookupResult {
	if s.lookup == nil || len(sites) == 0 {
		return nil
	}

	results := make([]*addresslookup.Address, len(sites))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, site := range sites {
		g.Go(func() error {
			addr, err := s.lookup.FetchAddress(gctx, addresslookup.Request{
				AccountName: site.Label,
				FirstName:   firstName,
				LastName:    lastName,
			})
			if err != nil {
				logger.CtxWarn(ctx, "address lookup failed", "site", site.Label, "error", err)
				return nil
			}
			results[i] = addr
			return nil
		})
	}
	_ = g.Wait()

	for i, addr := range results {
		if addr != nil {
			return &LookupResult{Site: sites[i], Address: addr}
		}
	}
	return nil
}

// Store перезаписывает строку адреса аккаунта. db - транзакция запроса.
// shipto по умолчанию "Имя Фамилия".
func (s *ShippingSyncer) Store(db *gorm.DB, userID uint, res *LookupResult, fallbackShipTo string) error {
	if res == nil || res.Address == nil {
		return nil
	}
	addr := res.Address

	shipTo := strings.TrimSpace(addr.ShipTo)
	if shipTo == "" {
		shipTo = fallbackShipTo
	}

	info := &models.ShippingInfo{
		UserID:     userID,
		Address1:   addr.Address1,
		Address2:   addr.Address2,
		City:       addr.City,
		State:      addr.State,
		Zip:        addr.Zip,
		Country:    addr.Country,
		ShipTo:     shipTo,
		SourceSite: res.Site.Label,
	}
	if len(addr.Raw) > 0 {
		info.LookupPayload = datatypes.JSON(addr.Raw)
	}

	return s.shippingRepo.Upsert(db, info)
}
