package holiday

import "sort"

// Fallback text for holidays missing from the table.
const (
	DefaultDescription = "Feriado nacional brasileiro. Você pode usar esta data para ajustar cronogramas e contratos."
	DefaultTip         = "Combine com antecedência se haverá atendimento normal, escala reduzida ou folga completa neste dia."
)

// known maps holiday names, exactly as the upstream API spells them, to their metadata.
// Read-only after package initialization.
var known = map[string]Metadata{
	"Confraternização mundial": {
		Description: "Marca o início do ano civil e é um momento de celebração e renovação.",
		Tip:         "Bom dia para revisar contratos anuais com clientes e ajustar cronogramas de limpeza.",
	},
	"Carnaval": {
		Description: "Feriado móvel ligado à tradição cristã, muito forte na cultura brasileira.",
		Tip:         "Muitos negócios fecham ou têm horários reduzidos. Ajuste escalas e plantões com antecedência.",
		Movable:     true,
	},
	"Sexta-feira Santa": {
		Description: "Dia cristão que relembra a crucificação de Jesus Cristo. Feriado nacional em todo o país.",
		Tip:         "Alguns clientes podem antecipar ou postergar limpezas. Combine o cronograma da semana toda.",
		Movable:     true,
	},
	"Páscoa": {
		Description: "Celebração cristã da ressurreição de Jesus. A data varia todos os anos.",
		Tip:         "Muitos estabelecimentos trabalham em horário especial no final de semana.",
		Movable:     true,
	},
	"Tiradentes": {
		Description: "Homenagem a Joaquim José da Silva Xavier, mártir da Inconfidência Mineira.",
		Tip:         "Feriado fixo, bom para planejar folgas da equipe com antecedência.",
	},
	"Dia do trabalho": {
		Description: "Celebra os trabalhadores e a luta por direitos trabalhistas.",
		Tip:         "Excelente ocasião para reforçar comunicação interna com a equipe de limpeza.",
	},
	"Corpus Christi": {
		Description: "Celebração católica que ocorre 60 dias após a Páscoa, com procissões e tapetes de rua em muitas cidades.",
		Tip:         "Se você presta serviço para igrejas ou eventos, pode haver demanda extra de limpeza.",
		Movable:     true,
	},
	"Independência do Brasil": {
		Description: "Comemora a declaração de independência do Brasil em 7 de setembro de 1822.",
		Tip:         "Muitos comércios fecham; aproveite para fazer limpezas mais pesadas em locais vazios.",
	},
	"Nossa Senhora Aparecida": {
		Description: "Padroeira do Brasil, feriado nacional de forte tradição religiosa.",
		Tip:         "Locais religiosos podem precisar de reforço na limpeza antes e depois das missas.",
	},
	"Finados": {
		Description: "Dia de homenagens aos entes queridos falecidos, com grande movimento em cemitérios.",
		Tip:         "Empresas que atendem cemitérios ou floriculturas podem ter aumento de demanda.",
	},
	"Proclamação da República": {
		Description: "Marca a mudança do regime monárquico para república em 15 de novembro de 1889.",
		Tip:         "Bom dia para programar limpezas em prédios públicos fechados.",
	},
	"Dia da consciência negra": {
		Description: "Data que celebra a luta e a contribuição da população negra na formação do país.",
		Tip:         "Em algumas cidades é feriado municipal, em outras não; importante confirmar com cada cliente.",
	},
	"Natal": {
		Description: "Comemoração do nascimento de Jesus Cristo, uma das datas mais importantes do calendário cristão.",
		Tip:         "Normalmente é feito um grande preparo antes (limpezas de fim de ano) e menos atividades no dia.",
	},
}

// Resolve returns the metadata for a holiday name, falling back to the
// generic description and tip for names not in the table.
func Resolve(name string) Metadata {
	if md, ok := known[name]; ok {
		return md
	}
	return Metadata{
		Description: DefaultDescription,
		Tip:         DefaultTip,
		Movable:     false,
	}
}

// IsKnown reports whether the name has its own entry in the table.
func IsKnown(name string) bool {
	_, ok := known[name]
	return ok
}

// KnownNames returns the names in the table, sorted.
func KnownNames() []string {
	names := make([]string, 0, len(known))
	for name := range known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Enrich pairs a record with its resolved metadata.
func Enrich(r Record) Enriched {
	return Enriched{Record: r, Metadata: Resolve(r.Name)}
}
