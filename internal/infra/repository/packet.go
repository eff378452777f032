package repository

import (
	"context"
	"errors"
	"time"

	"kyuaar/internal/domain/packet"
	"kyuaar/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgErrCodeUniqueViolation = "23505"

const packetColumns = `
	id, management_id, qr_count, state, redirect_target,
	buyer_name, buyer_email, sale_price, sold_at,
	price, artifact_url, update_count, window_started_at,
	last_configured_at, deleted, version, created_at, updated_at`

// PacketRepository is the Postgres store adapter. Both identifier namespaces
// index the same row; every mutation is a versioned compare-and-set.
type PacketRepository struct {
	pool *pgxpool.Pool
}

func NewPacketRepository(pool *pgxpool.Pool) *PacketRepository {
	return &PacketRepository{pool: pool}
}

func (r *PacketRepository) FindByPacketID(ctx context.Context, id packet.PacketID) (*packet.Packet, error) {
	query := `SELECT ` + packetColumns + ` FROM packets WHERE id = $1`
	return r.findOne(ctx, query, id.String())
}

func (r *PacketRepository) FindByManagementID(ctx context.Context, id packet.ManagementID) (*packet.Packet, error) {
	query := `SELECT ` + packetColumns + ` FROM packets WHERE management_id = $1`
	return r.findOne(ctx, query, id.String())
}

func (r *PacketRepository) findOne(ctx context.Context, query string, arg string) (*packet.Packet, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	p, err := scanPacket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("packet not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to load packet", err)
	}
	return p, nil
}

func (r *PacketRepository) List(ctx context.Context, limit int) ([]*packet.Packet, error) {
	query := `SELECT ` + packetColumns + ` FROM packets ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list packets", err)
	}
	defer rows.Close()

	var packets []*packet.Packet
	for rows.Next() {
		p, err := scanPacket(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan packet row", err)
		}
		packets = append(packets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate packet rows", err)
	}
	return packets, nil
}

// Create relies on the unique indexes over both id columns to enforce the
// id-space invariant under concurrent creation.
func (r *PacketRepository) Create(ctx context.Context, p *packet.Packet) error {
	query := `
		INSERT INTO packets (` + packetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.pool.Exec(ctx, query, packetArgs(p, p.Version())...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation {
			return infra.WrapRepoErr("duplicate identifier", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to create packet", err)
	}
	return nil
}

// Update writes the whole record guarded by the version column. Zero rows
// affected on an existing row means a concurrent writer won; the caller
// reloads and retries.
func (r *PacketRepository) Update(ctx context.Context, p *packet.Packet, expectedVersion int64) error {
	query := `
		UPDATE packets SET
			qr_count = $3, state = $4, redirect_target = $5,
			buyer_name = $6, buyer_email = $7, sale_price = $8, sold_at = $9,
			price = $10, artifact_url = $11, update_count = $12, window_started_at = $13,
			last_configured_at = $14, deleted = $15, version = $16,
			created_at = $17, updated_at = $18
		WHERE id = $1 AND version = $2`

	args := packetArgs(p, expectedVersion+1)
	// args[1] holds the expected version in the WHERE clause slot.
	args[1] = expectedVersion

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return infra.WrapRepoErr("failed to update packet", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM packets WHERE id = $1)`, p.ID().String()).Scan(&exists); err != nil {
			return infra.WrapRepoErr("failed to verify packet existence", err)
		}
		if !exists {
			return infra.WrapRepoErr("packet not found", nil, infra.KindNotFound)
		}
		return infra.WrapRepoErr("version mismatch", nil, infra.KindStaleState)
	}
	return nil
}

func packetArgs(p *packet.Packet, version int64) []any {
	var target *string
	if p.RedirectTarget() != nil {
		t := p.RedirectTarget().String()
		target = &t
	}
	var buyerName, buyerEmail *string
	var salePrice *float64
	var soldAt *time.Time
	if sale := p.Sale(); sale != nil {
		name := sale.BuyerName()
		price := sale.Price()
		at := sale.SoldAt()
		buyerName = &name
		buyerEmail = sale.BuyerEmail()
		salePrice = &price
		soldAt = &at
	}
	return []any{
		p.ID().String(),
		p.ManagementID().String(),
		p.QRCount(),
		p.State().String(),
		target,
		buyerName,
		buyerEmail,
		salePrice,
		soldAt,
		p.Price(),
		p.ArtifactURL(),
		p.UpdateCount(),
		p.WindowStartedAt(),
		p.LastConfiguredAt(),
		p.Deleted(),
		version,
		p.CreatedAt(),
		p.UpdatedAt(),
	}
}

func scanPacket(row pgx.Row) (*packet.Packet, error) {
	var (
		id, managementID, state      string
		qrCount, updateCount         int
		targetStr                    *string
		buyerName, buyerEmail        *string
		salePrice                    *float64
		soldAt                       *time.Time
		price                        float64
		artifactURL                  *string
		windowStartedAt, lastConfiguredAt *time.Time
		deleted                      bool
		version                      int64
		createdAt, updatedAt         time.Time
	)

	err := row.Scan(
		&id, &managementID, &qrCount, &state, &targetStr,
		&buyerName, &buyerEmail, &salePrice, &soldAt,
		&price, &artifactURL, &updateCount, &windowStartedAt,
		&lastConfiguredAt, &deleted, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	var target *packet.Destination
	if targetStr != nil {
		d := packet.ReconstructDestination(*targetStr)
		target = &d
	}
	var sale *packet.Sale
	if buyerName != nil && salePrice != nil && soldAt != nil {
		s := packet.ReconstructSale(*buyerName, buyerEmail, *salePrice, *soldAt)
		sale = &s
	}

	return packet.ReconstructPacket(
		packet.PacketID(id),
		packet.ManagementID(managementID),
		qrCount,
		packet.State(state),
		target,
		sale,
		price,
		artifactURL,
		updateCount,
		windowStartedAt,
		lastConfiguredAt,
		deleted,
		version,
		createdAt,
		updatedAt,
	), nil
}
