package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"buymore_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gocql/gocql"
)

const ProductsIndex = "products"

// rankWindow: quantos acertos o Elastic ranqueia. A vitrine filtra por
// substring no catálogo em memória, então o que passar disso só perde a ordem.
const rankWindow = 200

var ErrSearchDisabled = errors.New("Elasticsearch não configurado")

// Search mantém o índice de produtos. Um *Search nil significa busca desativada.
type Search struct {
	es *elasticsearch.Client
}

func NewSearch(es *elasticsearch.Client) *Search {
	if es == nil {
		return nil
	}
	return &Search{es: es}
}

func (s *Search) Enabled() bool { return s != nil && s.es != nil }

type productDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
}

//
// --- INDEXAÇÃO ---
//

func (s *Search) IndexProduct(ctx context.Context, p models.Product) {
	if !s.Enabled() {
		return
	}
	data, _ := json.Marshal(productDoc{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID.String(),
	})
	req := esapi.IndexRequest{
		Index:      ProductsIndex,
		DocumentID: p.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		log.Println("❌ Erro ao enviar para o Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic devolveu erro para %s: %s", p.Name, res.String())
	} else {
		log.Printf("✅ Produto indexado no Elasticsearch: %s", p.Name)
	}
}

func (s *Search) RemoveProduct(ctx context.Context, id gocql.UUID) {
	if !s.Enabled() {
		return
	}
	req := esapi.DeleteRequest{Index: ProductsIndex, DocumentID: id.String(), Refresh: "true"}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		log.Println("❌ Erro ao remover do Elastic:", err)
		return
	}
	defer res.Body.Close()
}

//
// --- BUSCA ---
//

// SearchProductIDs devolve até rankWindow ids na ordem de relevância do
// Elastic. A busca é aproximada (fuzziness), serve para ordenar e não para
// decidir o que aparece.
func (s *Search) SearchProductIDs(ctx context.Context, query string) ([]gocql.UUID, error) {
	if !s.Enabled() {
		return nil, ErrSearchDisabled
	}

	var buf bytes.Buffer
	q := map[string]interface{}{
		"size": rankWindow,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erro ao montar consulta: %w", err)
	}

	req := esapi.SearchRequest{Index: []string{ProductsIndex}, Body: &buf}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return nil, fmt.Errorf("erro na consulta ao Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("Elastic respondeu %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	ids := make([]gocql.UUID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := gocql.ParseUUID(h.Source.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
