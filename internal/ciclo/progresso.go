package ciclo

import (
	"math"
	"regexp"
	"strings"

	"github.com/example/estudos/pkg/models"
)

// PrefixoTopico marks legacy study sessions whose topico_id points at a cycle session
const PrefixoTopico = "ciclo-"

// MarcadorComentario is the legacy marker embedded in comentarios
const MarcadorComentario = "CICLO_SESSAO_ID:"

// Cor tags used by the front end to paint a cycle session
const (
	CorConcluida = "verde"
	CorParcial   = "amarelo"
	CorPendente  = "cinza"
)

// Variants seen in legacy rows, tried in order
var marcadorPatterns = []*regexp.Regexp{
	regexp.MustCompile(regexp.QuoteMeta(MarcadorComentario) + `([^\s,;|]+)`),
	regexp.MustCompile(`(?i)CICLO_SESSAO_ID\s*:\s*([^\s,;|]+)`),
	regexp.MustCompile(`(?i)ciclo_sessao_id\s*=\s*([^\s,;|]+)`),
}

// ResolveSessaoCicloID returns the cycle session a study session counts for.
// The typed reference wins; legacy encodings are tried afterwards.
func ResolveSessaoCicloID(s models.SessaoEstudo) (string, bool) {
	if s.CicloSessaoID != nil {
		if id := strings.TrimSpace(*s.CicloSessaoID); id != "" {
			return id, true
		}
	}

	if strings.HasPrefix(s.TopicoID, PrefixoTopico) {
		if id := strings.TrimSpace(strings.TrimPrefix(s.TopicoID, PrefixoTopico)); id != "" {
			return id, true
		}
	}

	if s.Comentarios == nil {
		return "", false
	}
	for _, re := range marcadorPatterns {
		m := re.FindStringSubmatch(*s.Comentarios)
		if len(m) < 2 {
			continue
		}
		if id := strings.TrimSpace(m[1]); id != "" {
			return id, true
		}
	}
	return "", false
}

// EstadoSessao is the derived state of one cycle session
type EstadoSessao struct {
	Sessao        models.SessaoCiclo
	TempoEstudado int // accumulated seconds
	Concluida     bool
	Parcial       bool
	TempoFaltante int // only set when Parcial
	Cor           string
}

// Progresso is the derived state of a whole cycle
type Progresso struct {
	Sessoes             []EstadoSessao
	TotalTempo          int
	TempoConcluido      int
	ProgressoPercentual int
	ProximaSessao       *models.SessaoCiclo
	CicloConcluido      bool
}

// Acumular sums studied time per cycle session id. Sessions with an
// unresolvable reference are ignored.
func Acumular(estudos []models.SessaoEstudo) map[string]int {
	acumulado := make(map[string]int)
	for _, e := range estudos {
		id, ok := ResolveSessaoCicloID(e)
		if !ok {
			continue
		}
		acumulado[id] += e.TempoEstudado
	}
	return acumulado
}

// Calcular derives per-session and cycle-level progress.
//
// sessoes must already be sorted by ordem. proximaManualID is the session the
// user picked by hand ("trocar sessão"), or empty.
func Calcular(sessoes []models.SessaoCiclo, estudos []models.SessaoEstudo, proximaManualID string) Progresso {
	var p Progresso
	if len(sessoes) == 0 {
		return p
	}

	acumulado := Acumular(estudos)
	p.Sessoes = make([]EstadoSessao, 0, len(sessoes))

	concluidas := 0
	for _, s := range sessoes {
		estado := EstadoSessao{
			Sessao:        s,
			TempoEstudado: acumulado[s.ID],
			Cor:           CorPendente,
		}

		switch {
		case estado.TempoEstudado > 0 && estado.TempoEstudado >= s.TempoPrevisto:
			estado.Concluida = true
			estado.Cor = CorConcluida
			concluidas++
		case estado.TempoEstudado > 0:
			estado.Parcial = true
			estado.TempoFaltante = s.TempoPrevisto - estado.TempoEstudado
			estado.Cor = CorParcial
		}

		p.TotalTempo += s.TempoPrevisto
		if estado.TempoEstudado < s.TempoPrevisto {
			p.TempoConcluido += estado.TempoEstudado
		} else {
			p.TempoConcluido += s.TempoPrevisto
		}

		p.Sessoes = append(p.Sessoes, estado)
	}

	p.ProgressoPercentual = int(math.Round(float64(concluidas) / float64(len(sessoes)) * 100))
	p.CicloConcluido = concluidas == len(sessoes)
	p.ProximaSessao = proximaSessao(p.Sessoes, proximaManualID)

	return p
}

// proximaSessao picks the session to study next: the manual pick when it is
// still open, else the first open session in order, else the first session
// of a new lap.
func proximaSessao(estados []EstadoSessao, proximaManualID string) *models.SessaoCiclo {
	if proximaManualID != "" {
		for i := range estados {
			if estados[i].Sessao.ID == proximaManualID && !estados[i].Concluida {
				s := estados[i].Sessao
				return &s
			}
		}
	}

	for i := range estados {
		if !estados[i].Concluida {
			s := estados[i].Sessao
			return &s
		}
	}

	s := estados[0].Sessao
	return &s
}
